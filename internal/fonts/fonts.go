package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exts are the font file extensions raylib can load.
var Exts = []string{".ttf", ".otf"}

// DefaultDirs are the font directories tried when Find gets none, relative to the
// process working directory (repo root or cmd/explorer).
var DefaultDirs = []string{"assets/fonts", "../../assets/fonts"}

// Scan returns the font files under dir as slash-separated paths relative to dir.
// A missing dir yields no files and no error.
func Scan(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalize lowercases and drops spaces, dashes and underscores, so "Google Sans"
// matches "Google_Sans/GoogleSans-Regular.ttf".
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// Find returns the path of a font whose relative path contains family, searching dirs
// in order (DefaultDirs when none are given). A "Regular" face is preferred when a
// family has several files. Returns os.ErrNotExist when nothing matches.
func Find(family string, dirs ...string) (string, error) {
	norm := normalize(family)
	if norm == "" {
		return "", os.ErrNotExist
	}
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	var first string
	for _, dir := range dirs {
		list, err := Scan(dir)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if !strings.Contains(normalize(rel), norm) {
				continue
			}
			full := filepath.Join(dir, filepath.FromSlash(rel))
			if strings.Contains(strings.ToLower(rel), "regular") {
				return full, nil
			}
			if first == "" {
				first = full
			}
		}
	}
	if first == "" {
		return "", os.ErrNotExist
	}
	return first, nil
}
