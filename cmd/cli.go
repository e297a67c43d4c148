package cmd

import (
	"io"
	"os"

	"github.com/habedi/solekit/db"
	"github.com/habedi/solekit/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// annotationOffline marks commands that run without config, database or API.
const annotationOffline = "offline"

// configPath is set by the persistent --config flag.
var configPath string

func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := createRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	defer closeApp()

	if err := rootCmd.Execute(); err != nil {
		return reportError(rootCmd, err)
	}
	return 0
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solekit",
		Short:         "A command-line client for the shoe store API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationOffline] == "true" {
				return nil
			}
			return setupApp(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (default ./solekit.yaml or $SOLEKIT_CONFIG)")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		registerCmd(),
		whoamiCmd(),
		profileCmd(),
		catalogCmd(),
		cartCmd(),
		wishlistCmd(),
		couponCmd(),
		reviewCmd(),
		orderCmd(),
		adminCmd(),
		versionCmd(),
	)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.New(clierr.Validation, err.Error(), err)
	})
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// reportError prints err unless a notification already told the user what
// went wrong, and maps it to an exit code.
func reportError(cmd *cobra.Command, err error) int {
	ce := clierr.FromAPI("command failed", err)
	log.Error().Err(err).Str("type", string(ce.Type)).Msg("Command execution failed.")
	if state == nil || !state.notices.Shown() {
		cmd.PrintErrln("Error:", ce.Message)
	}
	return ce.ExitCode()
}

func initializeDatabase() error {
	if err := db.InitDB(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	return nil
}

func closeDatabase() {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
	}
}
