package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/panda73111/mod0keecrack/internal/config"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string
	cfgFile      string

	// Settings loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "keecrack",
	Short: "Recover the master password of a KeePass 2.x database",
	Long: `keecrack recovers a forgotten KeePass 2.x (KDBX 3.1) master password by
trying every printable ASCII password of the starting password's length,
beginning at the starting password itself.

Progress is saved to a checkpoint file on interrupt and periodically while
searching, so rerunning the same command resumes where the last run stopped.

Commands:
  crack       Search for the master password
  inspect     Show the unencrypted header of a database
  checkpoint  Show saved search progress
  config      Show the effective configuration`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unsupported output format: %s", outputFormat)
		}

		loaded, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: keecrack.yaml in ., ./config, $HOME/.keecrack, /etc/keecrack)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// newAppContext creates the application context for a command run and routes
// logging through it. The returned function restores the previous logger.
func newAppContext() (*app.Context, func()) {
	ctx := app.NewContext()
	ctx.OutputFormat = outputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	return ctx, ctx.InstallLogger()
}
