package core

import (
	"net/url"
	"path"
	"strings"
)

type ArtifactKind int

const (
	// ArtifactFile is any download that is placed into the plugin directory as-is.
	ArtifactFile ArtifactKind = iota
	// ArtifactModule is a single plugin assembly.
	ArtifactModule
	// ArtifactArchive is extracted into its own directory.
	ArtifactArchive
)

const (
	ModuleExtension  = ".dll"
	ArchiveExtension = ".zip"
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactModule:
		return "module"
	case ArtifactArchive:
		return "archive"
	default:
		return "file"
	}
}

// KindOf dispatches on the file extension, ignoring case.
func KindOf(fileName string) ArtifactKind {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ModuleExtension):
		return ArtifactModule
	case strings.HasSuffix(lower, ArchiveExtension):
		return ArtifactArchive
	default:
		return ArtifactFile
	}
}

// FileNameFromURL returns the last segment of the URL's path, or "" when there is none.
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ArtifactFileName is the name the mod's download is stored under in the plugin directory.
func (m *ModEntry) ArtifactFileName() string {
	if name := SafeName(FileNameFromURL(m.DownloadURL)); isUsableFileName(name) {
		return name
	}
	return SafeName(m.Name) + ".bin"
}

func isUsableFileName(name string) bool {
	return strings.Trim(name, ".") != ""
}
