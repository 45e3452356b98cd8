package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/panda73111/mod0keecrack/internal/config"
	"github.com/panda73111/mod0keecrack/pkg/app"
	"github.com/panda73111/mod0keecrack/pkg/app/crack"
)

var (
	// Key file selection
	crackKeyFile   string
	crackNoKeyFile bool

	// Ignore saved progress
	crackFresh bool
)

var crackCmd = &cobra.Command{
	Use:   "crack <database> <starting-password>",
	Short: "Search for the master password of a database",
	Long: `Try every printable ASCII password with the length of the starting password,
beginning at the starting password and advancing the last character first.

A key file named like the database with the .key extension is used when it
exists. Press Ctrl+C to stop; progress is written to the checkpoint file and
the next run with the same starting password resumes from it.

Examples:
  # Search all 4 character passwords
  keecrack crack vault.kdbx "    "

  # Start from a partial guess with an explicit key file
  keecrack crack vault.kdbx "hunter  " --key-file secret.key

  # Restart a search from the beginning and write JSON
  keecrack crack vault.kdbx "aaaa" --fresh -o json`,

	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrack(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(crackCmd)

	flags := crackCmd.Flags()

	// Key file
	flags.StringVarP(&crackKeyFile, "key-file", "k", "", "key file to combine with each candidate")
	flags.BoolVar(&crackNoKeyFile, "no-key-file", false, "do not look for a key file next to the database")
	flags.String("key-file-ext", ".key", "extension of the automatically detected key file")

	// Artifacts
	flags.String("checkpoint", "checkpoints.dat", "checkpoint file")
	flags.String("result", "password.txt", "file the recovered password is written to")
	flags.BoolVar(&crackFresh, "fresh", false, "ignore saved progress and start at the starting password")

	// Limits and pacing
	flags.Uint64("max-rounds", 60_000_000, "refuse databases with more key transformation rounds")
	flags.Bool("strict-headers", true, "reject header entries with unknown ids")
	flags.Uint64("checkpoint-interval", 1000, "save progress every n attempts (0 saves only on exit)")
	flags.Duration("progress-interval", 2*time.Second, "minimum time between progress reports (0 disables them)")

	crackCmd.MarkFlagsMutuallyExclusive("key-file", "no-key-file")

	bindFlags(crackCmd, map[string]string{
		config.KeyKeyFileExtension:   "key-file-ext",
		config.KeyCheckpointFile:     "checkpoint",
		config.KeyResultFile:         "result",
		config.KeyMaxTransformRounds: "max-rounds",
		config.KeyStrictHeaders:      "strict-headers",
		config.KeyCheckpointInterval: "checkpoint-interval",
		config.KeyProgressInterval:   "progress-interval",
	})
}

func runCrack(databasePath, startingPassword string) error {
	ctx, restore := newAppContext()
	defer restore()

	signalCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctx.WithContext(signalCtx)

	if !ctx.Quiet {
		ctx.SetProgress(progressPrinter(ctx))
	}

	request := &crack.Request{
		DatabasePath:       databasePath,
		StartingPassword:   startingPassword,
		KeyFilePath:        crackKeyFile,
		KeyFileExtension:   cfg.KeyFileExtension,
		NoKeyFile:          crackNoKeyFile,
		CheckpointPath:     cfg.CheckpointFile,
		ResultPath:         cfg.ResultFile,
		Fresh:              crackFresh,
		StrictHeaders:      cfg.StrictHeaders,
		MaxTransformRounds: cfg.MaxTransformRounds,
		CheckpointInterval: cfg.CheckpointInterval,
		ProgressInterval:   cfg.ProgressInterval,
	}

	log.Printf("Searching %s from %q", databasePath, startingPassword)
	response, err := crack.Handle(ctx, request)
	endProgressLine(ctx)
	if err != nil {
		return err
	}

	if err := crack.FormatOutput(ctx.Stdout, response, ctx.OutputFormat); err != nil {
		return err
	}

	switch response.Outcome {
	case crack.OutcomeFound:
		return nil
	case crack.OutcomeCancelled:
		return errors.New("search interrupted")
	default:
		return errors.New("password not found")
	}
}

// progressPrinter redraws a single status line on a terminal and logs a line otherwise
func progressPrinter(ctx *app.Context) func(app.ProgressUpdate) {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	return func(update app.ProgressUpdate) {
		line := fmt.Sprintf("%s %q: %d tried, %.1f/s", update.Message, update.Current, update.Completed, update.Rate())
		if update.Total > 0 {
			line += fmt.Sprintf(", %d%% of this length, eta %v", update.Percent(), update.ETA().Round(time.Second))
		}
		if interactive {
			fmt.Fprintf(ctx.Stderr, "\r\033[K%s", line)
			return
		}
		log.Print(line)
	}
}

// endProgressLine moves past a status line left by progressPrinter
func endProgressLine(ctx *app.Context) {
	if ctx.ProgressCallback != nil && term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(ctx.Stderr)
	}
}

// bindFlags ties config keys to command flags so flags override the config file and environment
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}
