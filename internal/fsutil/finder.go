// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindPipelineFiles recursively searches root for pipeline definitions: any
// file named Jenkinsfile or ending in .jenkinsfile. A root that is itself a
// regular file is returned as-is regardless of its name, so explicit paths
// always win.
func FindPipelineFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == root || isPipelineFileName(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isPipelineFileName(name string) bool {
	return name == "Jenkinsfile" || strings.HasSuffix(name, ".jenkinsfile")
}
