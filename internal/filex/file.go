package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dirName (relative to the working directory unless
// absolute) and returns its absolute path.
func EnsureDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// imageExts are the upload extensions accepted for profile pictures.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ImageExt returns the lower-cased extension of a client-supplied file name,
// or false when it is not an accepted image type.
func ImageExt(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	return ext, imageExts[ext]
}
