// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package runstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rarst/sideface/internal/rundata"
)

func sampleRun(id string) rundata.Run {
	return rundata.Run{
		ID:     id,
		Source: "shop",
		Page:   "index.php",
		Profile: rundata.ProfileFromRaw(map[string]map[string]float64{
			"main()":       {"wt": 1000, "ct": 1},
			"main()==>foo": {"wt": 600, "ct": 2},
		}),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := NewFileStore(t.TempDir(), "")
	id, err := store.SaveRun(sampleRun("abc123"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.FileExists(t, filepath.Join(store.Dir, "abc123.shop.sideface"))

	run, err := store.GetRun("abc123", "shop")
	require.NoError(t, err)
	assert.Equal(t, "abc123", run.ID)
	assert.Equal(t, "shop", run.Source)
	assert.Equal(t, "index.php", run.Page)
	assert.Equal(t, sampleRun("").Profile, run.Profile)
	assert.False(t, run.Timestamp.IsZero())
}

func TestSaveRunGeneratesID(t *testing.T) {
	store := NewFileStore(t.TempDir(), "xhprof")
	run := sampleRun("")
	id1, err := store.SaveRun(run)
	require.NoError(t, err)
	id2, err := store.SaveRun(run)
	require.NoError(t, err)
	assert.Len(t, id1, 32)
	assert.NotEqual(t, id1, id2)
	assert.FileExists(t, filepath.Join(store.Dir, id1+".shop.xhprof"))
}

func TestGetRunBareProfile(t *testing.T) {
	dir := t.TempDir()
	raw := `{"main()": {"wt": 10, "ct": 1}, "main()==>foo": {"wt": 4, "ct": 1}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.legacy.sideface"), []byte(raw), 0o600))
	run, err := NewFileStore(dir, "").GetRun("bare", "legacy")
	require.NoError(t, err)
	assert.Empty(t, run.Page)
	assert.Len(t, run.Profile, 2)
	assert.Equal(t, 4.0, run.Profile[rundata.Edge{Parent: "main()", Child: "foo"}][rundata.WallTime])
}

func TestGetRunBareProfileWithReservedSymbols(t *testing.T) {
	dir := t.TempDir()
	raw := `{"main()": {"wt": 10, "ct": 1}, "page": {"wt": 4, "ct": 1}, "profile": {"wt": 3, "ct": 1}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.legacy.sideface"), []byte(raw), 0o600))
	run, err := NewFileStore(dir, "").GetRun("odd", "legacy")
	require.NoError(t, err)
	assert.Empty(t, run.Page)
	assert.Len(t, run.Profile, 3)
	assert.Equal(t, 4.0, run.Profile[rundata.Edge{Child: "page"}][rundata.WallTime])
	assert.Equal(t, 3.0, run.Profile[rundata.Edge{Child: "profile"}][rundata.WallTime])
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		page    string
		edges   int
		wantErr bool
	}{
		{name: "wrapped", data: `{"page": "/index.php", "profile": {"main()": {"wt": 1}}}`, page: "/index.php", edges: 1},
		{name: "wrapped without page", data: `{"profile": {"main()": {"wt": 1}, "main()==>foo": {"wt": 1}}}`, edges: 2},
		{name: "bare", data: `{"main()": {"wt": 1}}`, edges: 1},
		{name: "bare with page edge", data: `{"main()": {"wt": 1}, "page": {"wt": 1}}`, edges: 2},
		{name: "bare with profile edge only", data: `{"profile": {"wt": 1}}`, edges: 1},
		{name: "not an object", data: `[1, 2]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodePayload([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, p.Page)
			assert.Len(t, p.Profile, tt.edges)
		})
	}
}

func TestGetRunErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.shop.sideface"), []byte("{not json"), 0o600))
	store := NewFileStore(dir, "")

	_, err := store.GetRun("missing", "shop")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetRun("broken", "shop")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	for _, id := range []string{"", "../etc", "a.b", `a\b`} {
		_, err = store.GetRun(id, "shop")
		assert.Error(t, err, "id %q", id)
	}
	_, err = store.GetRun("abc", "x/y")
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	store := NewFileStore(t.TempDir(), "")
	now := time.Now()
	for i, run := range []rundata.Run{
		{ID: "old", Source: "shop"},
		{ID: "newest", Source: "blog"},
		{ID: "middle", Source: "shop"},
	} {
		run.Profile = sampleRun("").Profile
		_, err := store.SaveRun(run)
		require.NoError(t, err)
		mtime := now.Add(time.Duration([]int{-3, 0, -1}[i]) * time.Hour)
		require.NoError(t, os.Chtimes(store.fileName(run.ID, run.Source), mtime, mtime))
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir, "dir.shop.sideface"), 0o700))

	runs, err := store.ListRuns("")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"newest", "middle", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, "blog", runs[0].Source)

	runs, err = store.ListRuns("shop")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "middle", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestListRunsMissingDir(t *testing.T) {
	runs, err := NewFileStore(filepath.Join(t.TempDir(), "nope"), "").ListRuns("")
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRuns(t *testing.T) {
	store := NewFileStore(t.TempDir(), "")
	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10"}
	for _, id := range ids {
		_, err := store.SaveRun(sampleRun(id))
		require.NoError(t, err)
	}
	runs, err := GetRuns(context.Background(), store, ids, "shop")
	require.NoError(t, err)
	require.Len(t, runs, len(ids))
	for i, run := range runs {
		assert.Equal(t, ids[i], run.ID)
	}

	_, err = GetRuns(context.Background(), store, []string{"r1", "missing"}, "shop")
	assert.ErrorIs(t, err, ErrNotFound)
}
