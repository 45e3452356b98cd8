package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/panda73111/mod0keecrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the settings a run would use after combining defaults, the config
file and KEECRACK_* environment variables.

Examples:
  # Show where settings come from
  keecrack config

  # Check an alternative config file
  keecrack config --config ./ci.yaml -o yaml`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig() error {
	ctx, restore := newAppContext()
	defer restore()

	return formatConfig(ctx.Stdout, cfg, viper.ConfigFileUsed(), ctx.OutputFormat)
}

func formatConfig(w io.Writer, c *config.Config, source, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(c)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(c)
	case "table":
		if source == "" {
			source = "(none, defaults and environment)"
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Config file:\t%s\n\n", source)
		fmt.Fprintf(tw, "%s\t%d\n", config.KeyMaxTransformRounds, c.MaxTransformRounds)
		fmt.Fprintf(tw, "%s\t%t\n", config.KeyStrictHeaders, c.StrictHeaders)
		fmt.Fprintf(tw, "%s\t%s\n", config.KeyCheckpointFile, c.CheckpointFile)
		fmt.Fprintf(tw, "%s\t%s\n", config.KeyResultFile, c.ResultFile)
		fmt.Fprintf(tw, "%s\t%s\n", config.KeyKeyFileExtension, c.KeyFileExtension)
		fmt.Fprintf(tw, "%s\t%d\n", config.KeyCheckpointInterval, c.CheckpointInterval)
		fmt.Fprintf(tw, "%s\t%v\n", config.KeyProgressInterval, c.ProgressInterval)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
