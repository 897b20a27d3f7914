/*
Package util holds the path helpers shared by the commands.
*/
package util

// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExpandUser replaces a leading "~" with the home directory. Paths like
// "~other" and paths without a home directory are returned as is.
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// AbsPath is filepath.Abs after ExpandUser.
func AbsPath(path string) (string, error) {
	return filepath.Abs(ExpandUser(path))
}

// exists stats path and checks that it is of the wanted kind. A missing
// path is not an error.
func exists(path string, want func(fs.FileMode) bool, kind string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !want(info.Mode()) {
		return false, errors.Errorf("%s not a %s", path, kind)
	}
	return true, nil
}

// FileExists reports whether a regular file is at path. Anything else at
// path is an error.
func FileExists(path string) (bool, error) {
	return exists(path, fs.FileMode.IsRegular, "file")
}

// DirectoryExists reports whether a directory is at path. Anything else at
// path is an error.
func DirectoryExists(path string) (bool, error) {
	return exists(path, fs.FileMode.IsDir, "directory")
}

// CreateDirectoryIfNotExists creates dir and its parents unless a
// directory is already there.
func CreateDirectoryIfNotExists(dir string, perm os.FileMode) error {
	found, err := DirectoryExists(dir)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}
