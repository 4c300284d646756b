package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout derives every URL and path of the pipeline from configuration.
// All methods are pure functions of their arguments.
type Layout struct {
	Root           string
	ProgressFile   string
	ListingBaseURL string
	MavenBaseURL   string
	Product        string
	Suffix         string
	DirPrefix      string
}

// ListingURL returns the page listing every build of coarse.
func (l Layout) ListingURL(coarse string) string {
	return fmt.Sprintf("%s/index_%s.html", strings.TrimRight(l.ListingBaseURL, "/"), coarse)
}

// FileName returns the canonical artifact name, e.g. forge-1.20.1-47.2.0-mdk.zip.
func (l Layout) FileName(t Task) string {
	return fmt.Sprintf("%s-%s-%s.zip", l.Product, t.Key(), l.Suffix)
}

// SourceURL returns the direct artifact repository URL of the task.
func (l Layout) SourceURL(t Task) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(l.MavenBaseURL, "/"), t.Key(), l.FileName(t))
}

// Dir returns the per-coarse subdirectory.
func (l Layout) Dir(coarse string) string {
	return filepath.Join(l.Root, l.DirPrefix+coarse)
}

// Destination returns the final path of the downloaded artifact.
func (l Layout) Destination(t Task) string {
	return filepath.Join(l.Dir(t.Coarse), l.FileName(t))
}

// ProgressPath returns the location of the progress snapshot.
func (l Layout) ProgressPath() string {
	return filepath.Join(l.Root, l.ProgressFile)
}
