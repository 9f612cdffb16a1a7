package cmd

import (
	"fmt"
	"os"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:     "open",
	Short:   "Open the plugins folder in your file manager",
	Aliases: []string{"folder"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager(nil)
		requireGameDir(m)

		dir, err := m.PluginsDir()
		if err != nil {
			shared.Exitln(err)
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			shared.Exitf("Failed to create %s: %v\n", dir, err)
		}

		fmt.Println("Opening folder...")
		if err := open.Start(dir); err != nil {
			fmt.Println("Opening folder failed, path:")
			fmt.Println(dir)
		}
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
