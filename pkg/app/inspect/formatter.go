package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// maxTableValue limits how much of a byte value the table shows
const maxTableValue = 64

// FormatOutput writes the inspection result to w in the requested format
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
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Database:\t%s\n", response.Path)
	fmt.Fprintf(tw, "Signature:\t%s %s\n", response.Magic, response.Identifier)
	fmt.Fprintf(tw, "Version:\t%s\n", response.Version)
	fmt.Fprintf(tw, "Cipher:\t%s\n", response.Cipher)
	fmt.Fprintf(tw, "Compression:\t%s\n", response.Compression)
	fmt.Fprintf(tw, "Transform rounds:\t%d\n", response.TransformRounds)
	fmt.Fprintf(tw, "Inner stream:\t%s\n", response.InnerRandomStream)
	fmt.Fprintf(tw, "Payload:\t%d bytes at offset %d\n", response.PayloadLength, response.PayloadOffset)
	if response.KeyFile != "" {
		fmt.Fprintf(tw, "Key file:\t%s\n", response.KeyFile)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "ID\tNAME\tLENGTH\tVALUE\n")
	fmt.Fprintf(tw, "--\t----\t------\t-----\n")
	for _, entry := range response.Entries {
		value := entry.Value
		if len(value) > maxTableValue {
			value = value[:maxTableValue] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", entry.ID, entry.Name, entry.Length, value)
	}

	return tw.Flush()
}
