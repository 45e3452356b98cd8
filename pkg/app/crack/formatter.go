package crack

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes the recovery result to w in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable formats the result as a two column table
func formatTable(w io.Writer, response *Response) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch response.Outcome {
	case OutcomeFound:
		fmt.Fprintf(tw, "PASSWORD FOUND:\t%s\n", response.Password)
	case OutcomeExhausted:
		fmt.Fprintf(tw, "NOT FOUND:\tall %d character candidates tried\n", len(response.StartingPassword))
	case OutcomeCancelled:
		fmt.Fprintf(tw, "INTERRUPTED:\tprogress saved, rerun the same command to resume\n")
	default:
		fmt.Fprintf(tw, "OUTCOME:\t%s\n", response.Outcome)
	}

	fmt.Fprintf(tw, "Database:\t%s\n", response.Database)
	fmt.Fprintf(tw, "Cipher:\t%s\n", response.Cipher)
	fmt.Fprintf(tw, "Transform rounds:\t%d\n", response.TransformRounds)
	if response.KeyFile != "" {
		fmt.Fprintf(tw, "Key file:\t%s\n", response.KeyFile)
	}
	fmt.Fprintf(tw, "Starting password:\t%q\n", response.StartingPassword)
	if response.ResumedFrom != "" {
		fmt.Fprintf(tw, "Resumed after:\t%q\n", response.ResumedFrom)
	}
	if response.LastAttempted != "" {
		fmt.Fprintf(tw, "Last attempted:\t%q\n", response.LastAttempted)
	}
	fmt.Fprintf(tw, "Attempts:\t%d\n", response.Attempts)
	fmt.Fprintf(tw, "Elapsed:\t%v (%.1f/s)\n", response.Elapsed.Round(time.Millisecond), response.Rate())
	fmt.Fprintf(tw, "Checkpoint file:\t%s\n", response.CheckpointFile)
	if response.ResultFile != "" {
		fmt.Fprintf(tw, "Password written to:\t%s\n", response.ResultFile)
	}
	for _, warning := range response.Warnings {
		fmt.Fprintf(tw, "Warning:\t%s\n", warning)
	}

	return tw.Flush()
}

// formatJSON formats the result as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats the result as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(response)
}
