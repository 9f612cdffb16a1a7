package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
)

var cfgFile string

// logger writes diagnostics to stderr; user-facing output goes to stdout.
var logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel, Prefix: "stairs"})

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stairs",
	Short: "A command line mod manager for The Stalking Stairs",
}

// Execute starts the root command; an interrupt cancels running downloads.
func Execute() {
	if config.Version != "" {
		rootCmd.Version = config.Version
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Add adds a new command as a subcommand to stairs
func Add(newCommand *cobra.Command) {
	rootCmd.AddCommand(newCommand)
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stairs.toml)")

	rootCmd.PersistentFlags().String(config.KeyGameDir, "", "The game directory (default is the remembered or detected one)")
	rootCmd.PersistentFlags().String(config.KeyManifestURL, config.DefaultManifestURL, "The URL of the mods manifest")
	rootCmd.PersistentFlags().String(config.KeyRuntimeRoot, config.DefaultRuntimeRoot, "The runtime folder inside the game directory")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, config.DefaultLogLevel, "Log level on stderr (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntP(config.KeyJobs, "j", config.DefaultJobs, "How many mods to install at once")
	rootCmd.PersistentFlags().BoolP(config.KeyNonInteractive, "y", false, "Accept all prompts and take the best match for mod names")

	// every persistent flag except --config is also the config key of the same name
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			_ = viper.BindPFlag(f.Name, f)
		}
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".stairs" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".stairs")
	}

	// STAIRS_GAME_DIR, STAIRS_GITHUB_TOKEN, ...
	viper.SetEnvPrefix("stairs")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}

	level, err := log.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logger.SetLevel(level)
}
