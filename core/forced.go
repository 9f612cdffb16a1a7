package core

import (
	"strings"
)

// The mod loader runtime every other mod depends on. Its version and download are pinned here
// and override whatever the manifest says.
const (
	ForcedName        = "BepInEx"
	ForcedAuthor      = "BepInEx"
	ForcedVersion     = "5.4.23.2"
	ForcedDownloadURL = "https://github.com/BepInEx/BepInEx/releases/download/v5.4.23.2/BepInEx_win_x64_5.4.23.2.zip"
	ForcedDescription = "BepInEx runtime (forced)"
)

func NewForcedEntry() *ModEntry {
	return &ModEntry{
		Name:        ForcedName,
		Author:      ForcedAuthor,
		Version:     ForcedVersion,
		DownloadURL: ForcedDownloadURL,
		Description: ForcedDescription,
		Enabled:     true,
		forced:      true,
	}
}

// matchesForced applies the two identification rules separately: manifests either name the
// runtime directly or only point at its asset.
func matchesForced(m *ModEntry) bool {
	if strings.EqualFold(strings.TrimSpace(m.Name), ForcedName) {
		return true
	}
	if strings.Contains(strings.ToLower(m.DownloadURL), strings.ToLower(ForcedName)) {
		return true
	}
	return false
}

// EnforceForcedDependency guarantees exactly one entry represents the forced runtime.
// An existing entry is pinned in place; otherwise a new one is inserted at the front.
func EnforceForcedDependency(mods []*ModEntry) []*ModEntry {
	found := -1
	for i, m := range mods {
		if m != nil && matchesForced(m) {
			found = i
			break
		}
	}

	if found < 0 {
		return append([]*ModEntry{NewForcedEntry()}, compact(mods)...)
	}

	forced := mods[found]
	forced.Enabled = true
	forced.DownloadURL = ForcedDownloadURL
	forced.Version = ForcedVersion
	forced.forced = true

	result := make([]*ModEntry, 0, len(mods))
	for _, m := range mods {
		if m == nil {
			continue
		}
		// later duplicates of the runtime would also report IsForced
		if m != forced && m.IsForced() {
			continue
		}
		result = append(result, m)
	}
	return result
}

func compact(mods []*ModEntry) []*ModEntry {
	result := make([]*ModEntry, 0, len(mods))
	for _, m := range mods {
		if m != nil {
			result = append(result, m)
		}
	}
	return result
}
