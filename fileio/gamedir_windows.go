package fileio

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

func gameDirCandidates() []string {
	var candidates []string
	for _, folder := range []*windows.KNOWNFOLDERID{windows.FOLDERID_ProgramFilesX86, windows.FOLDERID_ProgramFiles} {
		path, err := windows.KnownFolderPath(folder, 0)
		if err != nil {
			continue
		}
		candidates = append(candidates, steamCommon(filepath.Join(path, "Steam")))
	}
	return candidates
}
