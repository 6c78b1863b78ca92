// Package util - dataset directory plumbing shared by the trainers and
// the evaluator.
package util

import (
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ListImageFiles returns the paths of the image files in a directory,
// sorted by name for a stable processing order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []string: Paths of the .jpg/.jpeg/.png files found.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image directory %s", dir)
	}

	var paths []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		switch filepath.Ext(file.Name()) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, file.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// ListSubdirectories returns the names of the immediate subdirectories of
// dir, sorted. Identity datasets use one subdirectory per enrolled
// identity.
func ListSubdirectories(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading dataset directory %s", dir)
	}

	var names []string
	for _, file := range files {
		if file.IsDir() {
			names = append(names, file.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// LoadImage opens and decodes a single image file.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading image %s", path)
	}
	return img, nil
}
