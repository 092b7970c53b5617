package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

const sourceExt = ".md"

type SourceFile struct {
	Path string
	Slug string
}

// DiscoverSource lists the markdown files directly inside dir. Subdirectories
// are not descended into.
func DiscoverSource(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, sourceExt) {
			continue
		}
		out = append(out, SourceFile{
			Path: filepath.Join(dir, name),
			Slug: strings.TrimSuffix(name, sourceExt),
		})
	}
	return out, nil
}

// SourcePath maps a slug back to its file, rejecting anything that could
// escape dir.
func SourcePath(dir, slug string) (string, bool) {
	if !ValidSlug(slug) {
		return "", false
	}
	return filepath.Join(dir, slug+sourceExt), true
}

func ValidSlug(slug string) bool {
	if strings.TrimSpace(slug) == "" || strings.HasPrefix(slug, ".") {
		return false
	}
	return !strings.ContainsAny(slug, `/\`) && !strings.Contains(slug, "..")
}
