package core

import (
	"strings"
)

// ModEntry is a single installable mod as described by the manifest.
// Field names are matched case-insensitively when decoding manifest records.
type ModEntry struct {
	Name        string `mapstructure:"name" json:"name"`
	Author      string `mapstructure:"author" json:"author,omitempty"`
	Version     string `mapstructure:"version" json:"version,omitempty"`
	DownloadURL string `mapstructure:"downloadUrl" json:"downloadUrl,omitempty"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	GitPath     string `mapstructure:"gitPath" json:"gitPath,omitempty"`
	// ReleaseID pins release resolution to one release; zero means latest.
	ReleaseID int64  `mapstructure:"releaseId" json:"releaseId,omitempty"`
	Group     string `mapstructure:"group" json:"group,omitempty"`

	forced bool
}

func (m *ModEntry) DisplayName() string {
	if strings.TrimSpace(m.Version) == "" {
		return m.Name
	}
	return m.Name + " - " + m.Version
}

// IsForced reports whether this entry is the runtime dependency that can never be disabled.
func (m *ModEntry) IsForced() bool {
	return m.forced || strings.EqualFold(m.Name, ForcedName)
}

func (m *ModEntry) IsToggleable() bool {
	return !m.IsForced()
}

// Key identifies the entry for per-mod bookkeeping; names compare case-insensitively.
func (m *ModEntry) Key() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// ModList implements fuzzy.Source over mod names
type ModList []*ModEntry

func (l ModList) String(i int) string {
	return l[i].Name
}

func (l ModList) Len() int {
	return len(l)
}

// Find returns the first entry whose name matches case-insensitively.
func (l ModList) Find(name string) (*ModEntry, bool) {
	for _, m := range l {
		if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name)) {
			return m, true
		}
	}
	return nil, false
}
