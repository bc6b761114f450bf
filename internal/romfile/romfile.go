// Package romfile loads cartridge images from disk: raw .gb/.gbc
// files, or the first Game Boy image found inside a .7z archive (a
// common distribution format for ROM hacks and homebrew bundles).
package romfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// Load reads the cartridge image at path. A .7z archive is searched
// for the first entry with a .gb/.gbc extension; anything else is
// returned as raw bytes.
func Load(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".7z") {
		return loadArchive(path)
	}
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: reading %s: %w", path, err)
	}
	return rom, nil
}

func loadArchive(path string) ([]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: opening archive %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".gb" && ext != ".gbc" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: opening %s in %s: %w", f.Name, path, err)
		}
		rom, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("romfile: extracting %s from %s: %w", f.Name, path, err)
		}
		return rom, nil
	}
	return nil, fmt.Errorf("romfile: no .gb/.gbc entry in %s", path)
}
