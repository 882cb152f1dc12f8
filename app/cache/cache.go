// Package cache keeps local copies of uploaded binaries on disk
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"
)

// keyTimeFormat is the upload time part of a key, milliseconds are appended separately
const keyTimeFormat = "20060102_150405"

// Files is a flat directory of cached binaries, one file per key
type Files struct {
	location string
}

// New makes cache for given location, creating the directory if missing
func New(location string) (*Files, error) {
	if err := os.MkdirAll(location, 0o700); err != nil {
		return nil, fmt.Errorf("can't make cache location %s: %w", location, err)
	}
	return &Files{location: location}, nil
}

// Key makes file name for the binary, i.e. app1-20240102_030405_006.jar
func Key(appName, ext string, uploadTime time.Time) string {
	ts := uploadTime.UTC()
	return fmt.Sprintf("%s-%s_%03d.%s", appName, ts.Format(keyTimeFormat), ts.Nanosecond()/int(time.Millisecond), ext)
}

// Put stores data under key. Data written to a temp file first and renamed, so concurrent
// writers of the same key never expose a partial file. Missing location is re-created.
func (f *Files) Put(key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	// location may be removed while running, restore it
	if err := os.MkdirAll(f.location, 0o700); err != nil {
		return fmt.Errorf("can't make cache location %s: %w", f.location, err)
	}
	tmp := filepath.Join(f.location, "."+key+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("can't write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.Path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("can't move %s to %s: %w", tmp, key, err)
	}
	log.Printf("[DEBUG] cached %s, %d bytes", key, len(data))
	return nil
}

// Exists checks if key is in the cache
func (f *Files) Exists(key string) bool {
	if checkKey(key) != nil {
		return false
	}
	finfo, err := os.Stat(f.Path(key))
	return err == nil && finfo.Mode().IsRegular()
}

// Path returns location of the cached file for key. The file may not exist.
func (f *Files) Path(key string) string {
	return filepath.Join(f.location, key)
}

// Delete removes all cached files of the app, i.e. all keys made by Key for this appName.
// Names sharing a prefix (app and app-v2) are not affected.
func (f *Files) Delete(appName string) error {
	entries, err := os.ReadDir(f.location)
	if err != nil {
		return fmt.Errorf("can't read cache location %s: %w", f.location, err)
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(appName) + `-\d{8}_\d{6}_\d{3}\.[a-z]+$`)
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !re.MatchString(entry.Name()) {
			continue
		}
		fileName := filepath.Join(f.location, entry.Name())
		log.Printf("[DEBUG] delete cached file %s", fileName)
		if err := os.Remove(fileName); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Files) String() string {
	return fmt.Sprintf("location:%s", f.location)
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}
