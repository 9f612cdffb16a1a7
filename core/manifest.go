package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// GitHubWebBase prefixes "owner/repo" style gitPath values.
const GitHubWebBase = "https://github.com"

const manifestModsKey = "mods"

// ParseManifest turns the manifest text into mod entries. The root may be the list itself
// or an object holding it under "mods".
func ParseManifest(text string) ([]*ModEntry, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestMalformed, err)
	}
	// the document must be the whole payload
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the manifest", ErrManifestMalformed)
	}

	records, err := modRecords(root)
	if err != nil {
		return nil, err
	}

	mods := make([]*ModEntry, 0, len(records))
	for i, record := range records {
		mod, err := decodeModRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: mod record %d: %v", ErrManifestMalformed, i, err)
		}
		if mod.DownloadURL == "" && mod.GitPath != "" {
			mod.DownloadURL = NormalizeGitPath(mod.GitPath, GitHubWebBase)
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func modRecords(root interface{}) ([]interface{}, error) {
	switch v := root.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		mods, ok := v[manifestModsKey]
		if !ok {
			for k, val := range v {
				if strings.EqualFold(k, manifestModsKey) {
					mods, ok = val, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: object root has no %q array", ErrManifestMalformed, manifestModsKey)
		}
		list, isList := mods.([]interface{})
		if !isList {
			return nil, fmt.Errorf("%w: %q is not an array", ErrManifestMalformed, manifestModsKey)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: root is neither an array nor an object with a %q array", ErrManifestMalformed, manifestModsKey)
	}
}

func decodeModRecord(record interface{}) (*ModEntry, error) {
	fields, ok := record.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", record)
	}

	var mod ModEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &mod,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, err
	}
	mod.Name = strings.TrimSpace(mod.Name)
	mod.DownloadURL = strings.TrimSpace(mod.DownloadURL)
	mod.GitPath = strings.TrimSpace(mod.GitPath)
	return &mod, nil
}

// NormalizeGitPath turns a gitPath into a repository web URL. Values that are already
// http(s) URLs are returned unchanged.
func NormalizeGitPath(gitPath, webBase string) string {
	gitPath = strings.TrimSpace(gitPath)
	lower := strings.ToLower(gitPath)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return gitPath
	}
	return strings.TrimRight(webBase, "/") + "/" + strings.Trim(gitPath, "/")
}

// MarshalManifest writes mods in the wrapped {"mods": [...]} shape.
func MarshalManifest(mods []*ModEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Mods []*ModEntry `json:"mods"`
	}{mods}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
