package cmd

import (
	"github.com/spf13/cobra"

	"github.com/panda73111/mod0keecrack/pkg/app/inspect"
)

// Header checking (inspect command only)
var inspectLenient bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <database>",
	Short: "Show the unencrypted header of a database",
	Long: `Show the file signature, version and every header entry of a database,
along with where the encrypted payload starts.

Examples:
  # Show the header as a table
  keecrack inspect vault.kdbx

  # Accept unknown header entries and write YAML
  keecrack inspect vault.kdbx --lenient -o yaml`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectLenient, "lenient", false, "skip header entries with unknown ids instead of failing")
}

func runInspect(databasePath string) error {
	ctx, restore := newAppContext()
	defer restore()

	request := &inspect.Request{
		DatabasePath:     databasePath,
		StrictHeaders:    cfg.StrictHeaders && !inspectLenient,
		KeyFileExtension: cfg.KeyFileExtension,
	}

	response, err := inspect.Handle(ctx, request)
	if err != nil {
		return err
	}

	return inspect.FormatOutput(ctx.Stdout, response, ctx.OutputFormat)
}
