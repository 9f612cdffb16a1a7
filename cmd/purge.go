package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/cmdshared"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// purgeCmd represents the purge command
var purgeCmd = &cobra.Command{
	Use:     "purge",
	Short:   "Remove the runtime and every installed mod from the game",
	Aliases: []string{"uninstall-all"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager(nil)
		gameDir := requireGameDir(m)

		if !cmdshared.PromptYesNo(fmt.Sprintf("Remove all mods from %s? [Y/n]: ", gameDir)) {
			fmt.Println("Cancelled!")
			return
		}

		removed, err := m.RemoveRuntime()
		if err != nil {
			shared.Exitln(err)
		}
		if !removed {
			fmt.Println("No mods are installed")
			return
		}
		fmt.Println("All mods removed!")
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
