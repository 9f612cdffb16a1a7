package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/fileio"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// locateCmd represents the locate command
var locateCmd = &cobra.Command{
	Use:   "locate [dir]",
	Short: "Find the game directory, or set it, and remember it for later runs",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var dir string
		if len(args) == 1 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				shared.Exitln(err)
			}
			dir = abs
		} else {
			detected, err := fileio.DetectGameDir()
			if errors.Is(err, fileio.ErrGameDirNotFound) {
				shared.Exitf("%q was not found in the default Steam folders; run stairs locate <dir>\n", fileio.GameFolderName)
			} else if err != nil {
				shared.Exitln(err)
			}
			dir = detected
		}

		if err := fileio.ValidateGameDir(dir); err != nil {
			shared.Exitln(err)
		}

		settingsFile, err := shared.RememberGameDir(dir)
		if err != nil {
			shared.Exitf("Failed to save %s: %v\n", settingsFile, err)
		}
		fmt.Printf("Game directory set to %s\n", dir)

		m := newManager(nil)
		m.SetGameDir(dir)
		if runtime := core.NewForcedEntry(); m.IsInstalled(runtime) {
			plugins, _ := m.PluginsDir()
			fmt.Printf("%s is installed, plugins go to %s\n", runtime.Name, plugins)
		} else {
			fmt.Println("No mods installed yet; run stairs update to install the runtime")
		}
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
