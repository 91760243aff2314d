package main

import (
	"github.com/envtest/energy-planner/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "energy-planner",
	Short: "energy-planner estimates the energy, cost and carbon footprint of environmental tests.",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cli.NewCmdLookup())
	rootCmd.AddCommand(cli.NewCmdCatalog())
}
