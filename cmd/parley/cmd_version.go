package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-dm/parley/internal/buildconfig"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("parley %s (%s)\n", buildconfig.Version(), buildconfig.Commit())
	},
}
