package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// profileImagesDir is the subdirectory of the upload root that holds all
// profile images, partitioned by date.
const profileImagesDir = "profile_images"

// Disk stores profile images on the local filesystem under
// <root>/profile_images/<date>/<id>.<ext>.
type Disk struct {
	root string
}

// NewDisk constructs a Disk store rooted at the configured upload dir.
func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

// Resolve computes the relative storage path <date>/<userID>.<ext> using
// the UTC date of asOf. Re-uploads on different days land in different
// partitions.
func (d *Disk) Resolve(userID string, ext string, asOf time.Time) string {
	date := asOf.UTC().Format(time.DateOnly)
	return path.Join(date, fmt.Sprintf("%s.%s", userID, ext))
}

// Write stores data under the relative path, creating the date directory
// as needed and overwriting any existing file.
func (d *Disk) Write(rel string, data []byte) error {
	abs := d.abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrWrite, filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrWrite, abs, err)
	}
	return nil
}

// Remove deletes the file at the relative path if present, then removes
// the parent date directory if it is now empty. Other files for the same
// date are left untouched.
func (d *Disk) Remove(rel string) error {
	abs := d.abs(rel)
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}

	dateDir := filepath.Dir(abs)
	entries, err := os.ReadDir(dateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		return os.Remove(dateDir)
	}
	return nil
}

// Root returns the upload root this store writes under.
func (d *Disk) Root() string {
	return d.root
}

// MediaDir returns the absolute directory holding all profile images,
// suitable for serving over HTTP.
func (d *Disk) MediaDir() string {
	return filepath.Join(d.root, profileImagesDir)
}

func (d *Disk) abs(rel string) string {
	return filepath.Join(d.root, profileImagesDir, filepath.FromSlash(rel))
}
