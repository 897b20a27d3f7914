// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package runstore

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Rarst/sideface/internal/rundata"
)

// DefaultSuffix is the file extension of stored runs.
const DefaultSuffix = "sideface"

// FileStore keeps one file per run in a directory. Files are named
// <id>.<source>.<suffix> and hold the run as JSON, either a bare raw profile
// or an object with "page" and "profile" keys.
type FileStore struct {
	Dir    string
	Suffix string
}

// NewFileStore returns a store for the directory. An empty suffix selects
// DefaultSuffix.
func NewFileStore(dir, suffix string) *FileStore {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &FileStore{Dir: dir, Suffix: suffix}
}

var _ Store = (*FileStore)(nil)

type payload struct {
	Page    string                        `json:"page,omitempty"`
	Profile map[string]map[string]float64 `json:"profile"`
}

// decodePayload reads either payload form. An object is a wrapped run only
// when its keys are "profile" and optionally "page", with a profile of
// edges and a string page; anything else is a bare raw profile, so edges
// literally named "page" or "profile" still load.
func decodePayload(data []byte) (payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return payload{}, err
	}
	if profile, ok := fields["profile"]; ok && (len(fields) == 1 || (len(fields) == 2 && fields["page"] != nil)) {
		var p payload
		if json.Unmarshal(profile, &p.Profile) == nil && (fields["page"] == nil || json.Unmarshal(fields["page"], &p.Page) == nil) {
			return p, nil
		}
	}
	var p payload
	if err := json.Unmarshal(data, &p.Profile); err != nil {
		return payload{}, err
	}
	return p, nil
}

func (s *FileStore) fileName(id, source string) string {
	return filepath.Join(s.Dir, id+"."+source+"."+s.Suffix)
}

// checkName rejects ids and sources that would escape the directory or
// break the file naming scheme.
func checkName(kind, name string, allowDot bool) error {
	if name == "" {
		return errors.Errorf("%s must not be empty", kind)
	}
	if strings.ContainsAny(name, `/\`) || (!allowDot && strings.Contains(name, ".")) || name == "." || name == ".." {
		return errors.Errorf("invalid %s: %q", kind, name)
	}
	return nil
}

// GetRun reads a run from its file.
func (s *FileStore) GetRun(id, source string) (rundata.Run, error) {
	if err := checkName("run id", id, false); err != nil {
		return rundata.Run{}, err
	}
	if err := checkName("source", source, true); err != nil {
		return rundata.Run{}, err
	}
	fileName := s.fileName(id, source)
	data, err := os.ReadFile(fileName) // #nosec G304
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rundata.Run{}, errors.Wrapf(ErrNotFound, "id %s, source %s", id, source)
		}
		return rundata.Run{}, errors.Wrapf(err, "failed to read run %s", id)
	}
	info, err := os.Stat(fileName)
	if err != nil {
		return rundata.Run{}, errors.Wrapf(err, "failed to stat run %s", id)
	}
	p, err := decodePayload(data)
	if err != nil {
		return rundata.Run{}, errors.Wrapf(err, "failed to decode run %s", id)
	}
	slog.Debug("loaded run", slog.String("id", id), slog.String("source", source), slog.Int("edges", len(p.Profile)))
	return rundata.Run{
		ID:        id,
		Source:    source,
		Page:      p.Page,
		Timestamp: info.ModTime(),
		Profile:   rundata.ProfileFromRaw(p.Profile),
	}, nil
}

// ListRuns lists the run files of the directory, newest first. Files that
// do not follow the naming scheme are ignored.
func (s *FileStore) ListRuns(source string) ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read runs directory %s", s.Dir)
	}
	var runs []Summary
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, found := strings.CutSuffix(entry.Name(), "."+s.Suffix)
		if !found {
			continue
		}
		id, runSource, found := strings.Cut(base, ".")
		if !found || id == "" || runSource == "" {
			continue
		}
		if source != "" && runSource != source {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat run file", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		runs = append(runs, Summary{ID: id, Source: runSource, Timestamp: info.ModTime()})
	}
	slices.SortStableFunc(runs, func(a, b Summary) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return runs, nil
}

// SaveRun writes the run to its file, replacing any run with the same id and
// source.
func (s *FileStore) SaveRun(run rundata.Run) (string, error) {
	id := run.ID
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if err := checkName("run id", id, false); err != nil {
		return "", err
	}
	if err := checkName("source", run.Source, true); err != nil {
		return "", err
	}
	data, err := json.Marshal(payload{Page: run.Page, Profile: run.Profile.Raw()})
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode run %s", id)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil { // #nosec G301
		return "", errors.Wrapf(err, "failed to create runs directory %s", s.Dir)
	}
	if err := os.WriteFile(s.fileName(id, run.Source), data, 0o644); err != nil { // #nosec G306
		return "", errors.Wrapf(err, "failed to write run %s", id)
	}
	slog.Debug("saved run", slog.String("id", id), slog.String("source", run.Source))
	return id, nil
}
