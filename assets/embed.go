package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed sounds
var assetsFS embed.FS

// FS returns the embedded asset tree.
func FS() fs.FS {
	return assetsFS
}

// LoadFile loads an asset by assets-relative path, preferring a copy on disk
// under root so edited files win over the embedded ones.
func LoadFile(root string, fallback fs.FS, path string) ([]byte, error) {
	clean := cleanAssetPath(path)
	if root != "" {
		if data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	if fallback == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(fallback, clean)
}

// SoundFiles lists the embedded sounds.
func SoundFiles() ([]string, error) {
	entries, err := fs.ReadDir(assetsFS, "sounds")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, "sounds/"+e.Name())
	}
	return names, nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}
