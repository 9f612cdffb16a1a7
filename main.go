package main

import (
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/cmd"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	_ "github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/commands/utils"
)

var Version string
var GhApiKey string

func main() {
	config.SetVersion(Version)
	config.SetGitHubApiKey(GhApiKey)
	cmd.Execute()
}
