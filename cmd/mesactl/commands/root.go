// Package commands implements mesactl, the operator CLI for the seating
// service.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"

	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "mesactl",
	Short: "Inspect the wedding seating sheet",
	Long: `mesactl reads the guest sheet the same way the seating service does
and prints table occupancy, plus a few maintenance helpers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// SetVersionInfo stamps the build version.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", v, c)
}

// loadEnv reads path into the environment.  A missing default .env is
// fine; a missing explicitly named file is not.
func loadEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
}
