package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "F1DASH"

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "f1dash",
	Short: "Formula 1 session data explorer and dashboard server",
	Long: `f1dash pulls session data from the OpenF1 API and turns it into lap
tables, qualifying classifications, pit stop summaries, telemetry and
charts, on the command line or served as a JSON API.`,
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCalendarCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newLapsCmd())
	rootCmd.AddCommand(newQualifyingCmd())
	rootCmd.AddCommand(newPitsCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newTelemetryCmd())
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (environment variable), so --year and F1DASH_YEAR are equivalent.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them
		// to their equivalent keys with underscores
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "could not bind env var %s: %v\n", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not
		// set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}
