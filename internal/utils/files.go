package utils

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// RecursiveSuffix marks a directory argument that covers every package
// below it, as in "./..."
const RecursiveSuffix = "/..."

// FindPackageDirs recursively finds all directories under root that hold
// Go files or files matching schemaGlob. Hidden directories, testdata,
// vendor and directories starting with an underscore are skipped, the
// way the go tool skips them.
func FindPackageDirs(root, schemaGlob string) ([]string, error) {
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		isGo := filepath.Ext(name) == ".go" && !strings.HasSuffix(name, "_test.go")
		isSchema := false
		if schemaGlob != "" {
			isSchema, _ = filepath.Match(schemaGlob, name)
		}
		if isGo || isSchema {
			seen[filepath.Dir(path)] = true
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// SplitRecursive strips the recursive suffix from a directory argument
// and reports whether it was present.
func SplitRecursive(dir string) (string, bool) {
	if dir == "..." {
		return ".", true
	}
	if strings.HasSuffix(dir, RecursiveSuffix) {
		root := strings.TrimSuffix(dir, RecursiveSuffix)
		if root == "" {
			root = "/"
		}
		return root, true
	}
	return dir, false
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "_") ||
		name == "testdata" ||
		name == "vendor"
}
