// Package fsutil holds the shell's stateless filesystem helpers.
//
// Every helper works on an afero.Fs so tests can run against memory. Errors
// carry the offending path and wrap one of the sentinel errors below.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrNoSuchFile       = errors.New("No such file")
	ErrDestinationIsDir = errors.New("Destination cannot be a directory")
	ErrAlreadyExists    = errors.New("File already exists")
	ErrNotDirectory     = errors.New("Not a directory")
	ErrCopyIntoSelf     = errors.New("into itself")
)

// Exists reports whether path names any filesystem entry.
func Exists(fsys afero.Fs, path string) bool {
	ok, err := afero.Exists(fsys, path)
	return ok && err == nil
}

// IsFile reports whether path names a regular file.
func IsFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path names a directory.
func IsDir(fsys afero.Fs, path string) bool {
	ok, err := afero.IsDir(fsys, path)
	return ok && err == nil
}

// Describe reports what kind of entry path is.
func Describe(fsys afero.Fs, path string) string {
	switch {
	case IsFile(fsys, path):
		return "Dwelt indeed."
	case IsDir(fsys, path):
		return "Abode is."
	case Exists(fsys, path):
		// Devices, sockets and the like.
		return "Dwelt indeed."
	default:
		return "Dwelt not."
	}
}

// CreateFile creates path holding content. It never overwrites.
func CreateFile(fsys afero.Fs, path, content string) error {
	if Exists(fsys, path) {
		return fmt.Errorf("%s: %w", path, ErrAlreadyExists)
	}

	fd, err := fsys.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fd, content); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// CopyFile copies the regular file src to dst. dst may only be replaced if
// overwrite is set.
func CopyFile(fsys afero.Fs, src, dst string, overwrite bool) error {
	switch {
	case !Exists(fsys, src) || IsDir(fsys, src):
		return fmt.Errorf("%s: %w", src, ErrNoSuchFile)
	case IsDir(fsys, dst):
		return fmt.Errorf("%s: %w", dst, ErrDestinationIsDir)
	case !overwrite && IsFile(fsys, dst):
		return fmt.Errorf("%s: %w", dst, ErrAlreadyExists)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", dst, err)
	}
	return out.Close()
}

// CopyDir recursively copies the directory src into dst, creating dst if
// needed. Existing files under dst are overwritten. If progress is non-nil it
// is called before each file is copied.
//
// When dst lies inside src the copy skips dst so it doesn't recurse into its
// own output.
func CopyDir(fsys afero.Fs, src, dst string, progress func(from, to string)) error {
	src = trimDotSlash(src)
	dst = trimDotSlash(dst)

	if !IsDir(fsys, src) {
		return fmt.Errorf("%s: %w", src, ErrNotDirectory)
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("Cannot copy '%s' %w", src, ErrCopyIntoSelf)
	}

	return copyDir(fsys, src, dst, filepath.Clean(dst), progress)
}

func copyDir(fsys afero.Fs, src, dst, root string, progress func(from, to string)) error {
	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	if !IsDir(fsys, dst) {
		if err := fsys.MkdirAll(dst, 0777); err != nil {
			return fmt.Errorf("%s: %w", dst, err)
		}
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if filepath.Clean(from) == root {
				continue
			}
			if err := copyDir(fsys, from, to, root, progress); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if progress != nil {
				progress(from, to)
			}
			if err := CopyFile(fsys, from, to, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// Chdir changes the working directory to path using chdir, after checking
// that path is a directory on fsys.
func Chdir(fsys afero.Fs, chdir func(string) error, path string) error {
	if !IsDir(fsys, path) {
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	if err := chdir(path); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%s: %w", path, pathErr.Err)
		}
		return err
	}
	return nil
}

func trimDotSlash(path string) string {
	for strings.HasPrefix(path, "./") && len(path) > 2 {
		path = strings.TrimPrefix(path, "./")
	}
	return path
}
