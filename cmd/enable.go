package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/cmdshared"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/manager"
)

// selectMods resolves every argument to one entry, dropping repeats.
func selectMods(mods core.ModList, args []string) []*core.ModEntry {
	seen := make(map[string]bool)
	var selected []*core.ModEntry
	for _, arg := range args {
		mod, cancelled, err := cmdshared.SelectMod(mods, arg)
		if err != nil {
			shared.Exitln(err)
		}
		if cancelled {
			os.Exit(1)
		}
		if seen[mod.Key()] {
			continue
		}
		seen[mod.Key()] = true
		selected = append(selected, mod)
	}
	return selected
}

// printResults reports each outcome and returns how many requests failed.
func printResults(results []manager.Result) int {
	failed := 0
	for _, r := range results {
		switch {
		case errors.Is(r.Err, core.ErrOperationNotAllowed):
			fmt.Printf("%s is required by every other mod and stays enabled\n", r.Mod.Name)
		case r.Err != nil:
			failed++
			fmt.Printf("%s: %v\n", r.Mod.Name, r.Err)
		default:
			fmt.Printf("%s %s\n", r.Mod.DisplayName(), r.State)
		}
	}
	return failed
}

func setModsEnabled(cmd *cobra.Command, args []string, enabled bool) {
	progress := cmdshared.NewProgress(os.Stdout)
	m := newManager(progress.Func())
	requireGameDir(m)
	loadMods(cmd.Context(), m)

	selected := selectMods(m.Mods(), args)

	if enabled && !viper.GetBool(config.KeySkipRuntime) {
		if runtime, ok := m.Runtime(); ok {
			fmt.Printf("Installing %s...\n", runtime.DisplayName())
			if _, err := m.SetEnabled(cmd.Context(), runtime, true); err != nil {
				progress.Wait()
				shared.Exitln(err)
			}
		}
		// the runtime was installed above
		i := 0
		for _, mod := range selected {
			if !mod.IsForced() {
				selected[i] = mod
				i++
			}
		}
		selected = selected[:i]
	}

	results := m.SetEnabledAll(cmd.Context(), selected, enabled, viper.GetInt(config.KeyJobs))
	progress.Wait()

	if failed := printResults(results); failed > 0 {
		shared.Exitf("%d of %d mods failed\n", failed, len(results))
	}
}

// enableCmd represents the enable command
var enableCmd = &cobra.Command{
	Use:     "enable [mod]...",
	Short:   "Install mods into the game, along with the runtime they need",
	Aliases: []string{"install", "add"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setModsEnabled(cmd, args, true)
	},
}

// disableCmd represents the disable command
var disableCmd = &cobra.Command{
	Use:     "disable [mod]...",
	Short:   "Remove mods from the game",
	Aliases: []string{"remove", "rm"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setModsEnabled(cmd, args, false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)

	enableCmd.Flags().Bool("skip-runtime", false, "Do not reinstall the runtime first")
	_ = viper.BindPFlag(config.KeySkipRuntime, enableCmd.Flags().Lookup("skip-runtime"))
}
