package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/cmdshared"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Reinstall the runtime and every installed mod at its latest release",
	Aliases: []string{"upgrade"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		progress := cmdshared.NewProgress(os.Stdout)
		m := newManager(progress.Func())
		requireGameDir(m)
		loadMods(cmd.Context(), m)

		adopted := m.AdoptInstalled()
		if len(adopted) == 0 {
			fmt.Println("No installed mods found, updating the runtime only")
		}
		for _, mod := range adopted {
			fmt.Printf("Found %s\n", mod.Name)
		}

		installed, err := m.InstallEnabled(cmd.Context(), viper.GetInt(config.KeyJobs))
		progress.Wait()
		if err != nil {
			// per-mod failures come back joined; anything else stopped the pass
			if joined, ok := err.(interface{ Unwrap() []error }); ok {
				for _, e := range joined.Unwrap() {
					fmt.Println(e)
				}
				shared.Exitf("%d of %d mods failed to update\n", len(joined.Unwrap()), len(adopted))
			}
			shared.Exitln(err)
		}
		fmt.Printf("Runtime and %d mods updated!\n", installed)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
