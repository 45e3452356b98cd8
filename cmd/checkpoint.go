package cmd

import (
	"github.com/spf13/cobra"

	"github.com/panda73111/mod0keecrack/pkg/app/checkpoint"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Show saved search progress",
	Long: `Show the searches recorded in a checkpoint file.

Examples:
  # List every search in the configured checkpoint file
  keecrack checkpoint list

  # Show one search from another file
  keecrack checkpoint show "aaaa" --file other.dat`,
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every search in the checkpoint file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckpoint(checkpointFileFlag(cmd), "")
	},
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <starting-password>",
	Short: "Show the progress of one search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckpoint(checkpointFileFlag(cmd), args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointListCmd, checkpointShowCmd)

	checkpointCmd.PersistentFlags().StringP("file", "f", "", "checkpoint file (default: the configured checkpoint_file)")
}

// checkpointFileFlag returns --file or the configured checkpoint file
func checkpointFileFlag(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return path
	}
	return cfg.CheckpointFile
}

func runCheckpoint(storePath, startingPassword string) error {
	ctx, restore := newAppContext()
	defer restore()

	request := &checkpoint.Request{
		StorePath:        storePath,
		StartingPassword: startingPassword,
	}

	response, err := checkpoint.Handle(ctx, request)
	if err != nil {
		return err
	}

	return checkpoint.FormatOutput(ctx.Stdout, response, ctx.OutputFormat)
}
