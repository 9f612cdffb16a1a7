package core

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestUnavailable is returned when the manifest could not be fetched or was empty.
	ErrManifestUnavailable = errors.New("mod manifest unavailable")
	// ErrManifestMalformed is returned when the manifest payload has an unrecognised shape.
	ErrManifestMalformed = errors.New("mod manifest malformed")
	// ErrReleaseResolution marks a release lookup failure; it is logged, never surfaced.
	ErrReleaseResolution = errors.New("release resolution failed")
	ErrInstallFailed     = errors.New("install failed")
	ErrNoDownloadURL     = errors.New("no download URL for mod")
	// ErrOperationNotAllowed is an informational rejection, e.g. disabling the forced dependency.
	ErrOperationNotAllowed = errors.New("operation not allowed")
	ErrConfiguration       = errors.New("configuration error")
)

// InstallError describes a failed install of a single mod.
type InstallError struct {
	Mod string
	URL string
	Err error
}

func (e *InstallError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to install %s: %v", e.Mod, e.Err)
	}
	return fmt.Sprintf("failed to install %s from %s: %v", e.Mod, e.URL, e.Err)
}

func (e *InstallError) Unwrap() []error {
	return []error{ErrInstallFailed, e.Err}
}

func NewInstallError(mod *ModEntry, err error) *InstallError {
	return &InstallError{Mod: mod.Name, URL: mod.DownloadURL, Err: err}
}
