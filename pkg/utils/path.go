package utils

import (
	"os"
	"path/filepath"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
)

// CreateFolder makes sure every given directory exists.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0755); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile deletes the given files, ignoring ones that are already gone.
func RemoveFile(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// GetTripCoverPath returns the directory holding cover images for a trip,
// creating it on first use.
func GetTripCoverPath(tripID string) string {
	path := filepath.Join(config.PathCovers, tripID)
	_ = os.MkdirAll(path, 0755)
	return path
}

// GetImageryCachePath returns the directory where destination thumbnails are
// stored, creating it on first use.
func GetImageryCachePath() string {
	_ = os.MkdirAll(config.PathImagery, 0755)
	return config.PathImagery
}
