package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all the mods in the manifest",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager(nil)
		// no progress line here, the output may be JSON
		if err := m.Load(cmd.Context()); err != nil {
			shared.Exitln(err)
		}
		mods := m.Mods()

		if viper.GetBool(config.KeyListInstalledOnly) {
			i := 0
			for _, mod := range mods {
				if m.IsInstalled(mod) {
					mods[i] = mod
					i++
				}
			}
			mods = mods[:i]
		}

		if viper.GetBool(config.KeyListJSON) {
			data, err := core.MarshalManifest(mods)
			if err != nil {
				shared.Exitln(err)
			}
			_, _ = os.Stdout.Write(data)
			return
		}

		renderList(os.Stdout, mods, m.IsInstalled, viper.GetBool(config.KeyListVersion))
	},
}

// groupHeading turns a manifest group such as "qualityOfLife" or "visual_mods" into a heading.
func groupHeading(group string) string {
	if strings.TrimSpace(group) == "" {
		return "Other"
	}
	words := strings.Join(camelcase.Split(group), " ")
	words = strings.NewReplacer("_", " ", "-", " ").Replace(words)
	return titlecase.Title(strings.Join(strings.Fields(words), " "))
}

// renderList prints mods grouped by heading. The runtime comes first, ungrouped mods last.
func renderList(w io.Writer, mods core.ModList, installed func(*core.ModEntry) bool, verbose bool) {
	groups := make(map[string][]*core.ModEntry)
	var headings []string
	for _, mod := range mods {
		heading := groupHeading(mod.Group)
		if mod.IsForced() {
			heading = "Runtime"
		}
		if _, ok := groups[heading]; !ok {
			headings = append(headings, heading)
		}
		groups[heading] = append(groups[heading], mod)
	}

	rank := func(h string) int {
		switch h {
		case "Runtime":
			return 0
		case "Other":
			return 2
		}
		return 1
	}
	slices.SortFunc(headings, func(a, b string) int {
		if rank(a) != rank(b) {
			return rank(a) - rank(b)
		}
		return strings.Compare(a, b)
	})

	for i, heading := range headings {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, heading)

		entries := groups[heading]
		slices.SortStableFunc(entries, func(a, b *core.ModEntry) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
		for _, mod := range entries {
			line := "  " + mod.DisplayName()
			if mod.IsForced() {
				line += " [forced]"
			}
			if installed != nil && installed(mod) {
				line += " [installed]"
			}
			_, _ = fmt.Fprintln(w, line)

			if !verbose {
				continue
			}
			if mod.Author != "" {
				_, _ = fmt.Fprintf(w, "      by %s\n", mod.Author)
			}
			if mod.Description != "" {
				_, _ = fmt.Fprintf(w, "      %s\n", mod.Description)
			}
			if mod.DownloadURL != "" {
				_, _ = fmt.Fprintf(w, "      %s (%s)\n", mod.ArtifactFileName(), core.KindOf(mod.ArtifactFileName()))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("version", "v", false, "Print author, description and artifact of each mod")
	_ = viper.BindPFlag(config.KeyListVersion, listCmd.Flags().Lookup("version"))
	listCmd.Flags().BoolP("installed", "i", false, "Only list mods that are installed")
	_ = viper.BindPFlag(config.KeyListInstalledOnly, listCmd.Flags().Lookup("installed"))
	listCmd.Flags().Bool("json", false, "Print the resolved manifest as JSON")
	_ = viper.BindPFlag(config.KeyListJSON, listCmd.Flags().Lookup("json"))
}
