package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes the listing to w in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatTable(w io.Writer, response *Response) error {
	if len(response.Records) == 0 {
		_, err := fmt.Fprintf(w, "No checkpoints in %s.\n", response.StorePath)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Store:\t%s\n", response.StorePath)
	fmt.Fprintf(tw, "Database:\t%s\n\n", response.DatabasePath)

	fmt.Fprintf(tw, "STARTING\tCURRENT\tPROGRESS\n")
	fmt.Fprintf(tw, "--------\t-------\t--------\n")
	for _, rec := range response.Records {
		progress := fmt.Sprintf("%.6f%%", rec.Percent)
		if rec.Exhausted {
			progress = "exhausted"
		}
		fmt.Fprintf(tw, "%q\t%q\t%s\n", rec.StartingPassword, rec.CurrentPassword, progress)
	}
	return tw.Flush()
}
