package utils

import (
	"github.com/spf13/cobra"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/cmd"
)

// utilsCmd groups commands that are about stairs itself rather than the game
var utilsCmd = &cobra.Command{
	Use:   "utils",
	Short: "Utilities for working on stairs itself",
}

func init() {
	cmd.Add(utilsCmd)
}
