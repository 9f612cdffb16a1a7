package fileio

import (
	"path/filepath"
	"time"
)

// RawManifestUnsaved is returned in place of a path when the raw manifest could not be stored.
const RawManifestUnsaved = "Unable to write raw manifest to log folder"

// SaveRawManifest writes text verbatim to manifest_<UTC timestamp>.json in dir and returns the
// file path. It never fails; on any error it returns RawManifestUnsaved.
func SaveRawManifest(dir, text string) string {
	return saveRawManifestAt(dir, text, time.Now())
}

func saveRawManifestAt(dir, text string, now time.Time) string {
	if dir == "" {
		return RawManifestUnsaved
	}
	path := filepath.Join(dir, "manifest_"+now.UTC().Format("20060102150405")+".json")

	f, err := CreateFile(path)
	if err != nil {
		return RawManifestUnsaved
	}
	_, err = f.WriteString(text)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return RawManifestUnsaved
	}
	return path
}
