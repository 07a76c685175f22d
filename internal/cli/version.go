package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rosterline/internal/about"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s version %s\n", about.AppName, about.Version)
		fmt.Printf("%s\n", about.URL)
	},
}
