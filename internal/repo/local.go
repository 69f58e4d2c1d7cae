package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skippedDirs never contribute files to the tree.
var skippedDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	".venv":        true,
}

// LocalLister lists files straight from the filesystem.
type LocalLister struct{}

// List implements Lister. Hidden files and dependency directories are
// excluded; the first README.md found (case-insensitive) supplies the
// readme text.
func (LocalLister) List(ctx context.Context, ref Ref) (Listing, error) {
	root := ref.LocalPath
	if root == "" {
		return Listing{}, fmt.Errorf("local repository %s has no path", ref)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Listing{}, fmt.Errorf("directory not found: %s", root)
	}

	var paths []string
	var readme string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || name == "__init__.py" {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))

		if readme == "" && strings.EqualFold(name, "readme.md") {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				log.Printf("WARNING: could not read README.md: %v", readErr)
			} else {
				readme = string(data)
			}
		}
		return nil
	})
	if err != nil {
		return Listing{}, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(paths)
	return Listing{FilePaths: paths, Readme: readme}, nil
}
