package fileio

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// MaxExtractedFileSize bounds a single extracted entry (1 GB) so a crafted archive cannot fill the disk.
const MaxExtractedFileSize int64 = 1 << 30

var ErrUnsafeArchivePath = errors.New("archive entry escapes the destination directory")

// ExtractZip extracts every entry of the archive into dest, creating it if needed.
// Entries matching ignore are skipped; ignore may be nil.
func ExtractZip(archivePath, dest string, ignore *gitignore.GitIgnore) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	dest, err = filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, os.ModePerm); err != nil {
		return err
	}

	for _, f := range r.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if ignore != nil && ignore.MatchesPath(name) {
			continue
		}

		target, err := safeJoin(dest, name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return err
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if f.UncompressedSize64 > uint64(MaxExtractedFileSize) {
		return fmt.Errorf("entry is larger than %d bytes", MaxExtractedFileSize)
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := CreateFile(target)
	if err != nil {
		return err
	}

	// the header size can lie, so the copy is bounded as well
	n, err := io.Copy(out, io.LimitReader(src, MaxExtractedFileSize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > MaxExtractedFileSize {
		err = fmt.Errorf("entry is larger than %d bytes", MaxExtractedFileSize)
	}
	return err
}
