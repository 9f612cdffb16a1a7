package cmdshared

import (
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"
	"gopkg.in/dixonwille/wmenu.v4"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
)

var ErrNoMatch = errors.New("no mod matches")

// MatchMod finds the entry named term. Exact names win, then names with the same slug
// ("better-lights" for "Better Lights (Beta)"); otherwise the fuzzy matches are returned best first.
func MatchMod(mods core.ModList, term string) []*core.ModEntry {
	if mod, ok := mods.Find(term); ok {
		return []*core.ModEntry{mod}
	}
	var matches []*core.ModEntry
	if slug := core.SlugifyName(term); slug != "" {
		for _, mod := range mods {
			if core.SlugifyName(mod.Name) == slug {
				matches = append(matches, mod)
			}
		}
		if len(matches) > 0 {
			return matches
		}
	}
	for _, res := range fuzzy.FindFrom(term, mods) {
		matches = append(matches, mods[res.Index])
	}
	return matches
}

// SelectMod resolves term to a single entry, asking the user to choose when several mods
// match. The second return value is true when the user cancelled.
func SelectMod(mods core.ModList, term string) (*core.ModEntry, bool, error) {
	matches := MatchMod(mods, term)
	if len(matches) == 0 {
		return nil, false, fmt.Errorf("%w %q", ErrNoMatch, term)
	}
	if len(matches) == 1 || viper.GetBool(config.KeyNonInteractive) {
		return matches[0], false, nil
	}

	fmt.Printf("Several mods match %q\n", term)
	menu := wmenu.NewMenu("Choose a number:")

	menu.Option("Cancel", nil, false, nil)
	for i, v := range matches {
		menu.Option(v.DisplayName(), v, i == 0, nil)
	}

	var selected *core.ModEntry
	var cancelled bool
	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 || menuRes[0].Value == nil {
			fmt.Println("Cancelled!")
			cancelled = true
			return nil
		}

		var ok bool
		selected, ok = menuRes[0].Value.(*core.ModEntry)
		if !ok {
			return errors.New("error converting interface from wmenu")
		}
		return nil
	})
	if err := menu.Run(); err != nil {
		return nil, false, err
	}
	return selected, cancelled, nil
}
