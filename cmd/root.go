// Package cmd wires the g10 toolchain's packages into a cobra CLI. Per
// spec.md §1 the CLI itself carries no domain logic: each subcommand's
// Run function is a thin adapter over an exported, independently testable
// function in the core packages.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the g10 toolchain's entry point: `g10 asm ...` / `g10 run ...`.
var RootCmd = &cobra.Command{
	Use:   "g10",
	Short: "Toolchain for the G10 16/32-bit CPU",
	Long: `g10 is the assembler and instruction-set simulator for the G10
16/32-bit CPU: it turns G10 assembly into relocatable object files and
executes those objects (or already-linked images) against a cycle-accurate
CPU model.`,
}

// Execute runs the command tree; it is the sole entry point main calls.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.g10.yaml)")
	cobra.OnInitialize(initConfig)
}

// initConfig reads in a config file and environment variables if set,
// following the teacher's cmd/root.go viper setup.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".g10")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
