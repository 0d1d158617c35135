package main

import (
	"os"
	"path/filepath"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCandidatesDefaultBranches(t *testing.T) {
	w := &Workspace{
		Owner: "phetsims",
		ArchiveTemplates: []string{
			"https://a.example/%[1]s/%[2]s/%[3]s.tar.gz",
			"https://b.example/%[1]s/%[2]s/%[3]s",
		},
	}

	urls := w.snapshotCandidates("scenery", "")
	assert.Equal(t, []string{
		"https://a.example/phetsims/scenery/main.tar.gz",
		"https://b.example/phetsims/scenery/main",
		"https://a.example/phetsims/scenery/master.tar.gz",
		"https://b.example/phetsims/scenery/master",
	}, urls)
}

func TestSnapshotCandidatesBranchHint(t *testing.T) {
	w := &Workspace{
		Owner:            "phetsims",
		ArchiveTemplates: []string{"https://a.example/%[1]s/%[2]s/%[3]s.tar.gz"},
	}

	urls := w.snapshotCandidates("scenery", "1.2")
	assert.Equal(t, []string{"https://a.example/phetsims/scenery/1.2.tar.gz"}, urls)
}

func TestEnsureSnapshot(t *testing.T) {
	w, _, stderr := newTestWorkspace(t)

	archives := testcli.MkdirTemp(t)
	makeArchive(t, archives, "scenery", "main", map[string]string{"file1": "content"})
	w.ArchiveTemplates = []string{
		"file://" + archives + "/%[2]s-missing.tar.gz",
		"file://" + archives + "/%[2]s-%[3]s.tar.gz",
	}

	require.NoError(t, w.ensureSnapshot("scenery", "scenery", ""))
	assert.Contains(t, stderr.String(), "unpacked scenery\n")

	data, err := os.ReadFile(filepath.Join(w.Root, "scenery", "file1"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.False(t, isLiveRepo(filepath.Join(w.Root, "scenery")))

	// Scratch space is gone; only the destination remains.
	entries, err := os.ReadDir(w.Root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scenery", entries[0].Name())
}

func TestEnsureSnapshotExistingDirIsNoop(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.Root, "scenery"), 0755))

	// Every candidate URL is unreachable; an existing destination means none
	// of them is ever tried.
	w.ArchiveTemplates = []string{"file:///nonexistent/%[2]s-%[3]s.tar.gz"}
	assert.NoError(t, w.ensureSnapshot("scenery", "scenery", ""))
}

func TestEnsureSnapshotAllCandidatesFail(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	w.ArchiveTemplates = []string{
		"file:///nonexistent/%[2]s-%[3]s.tar.gz",
		"file:///alsonothere/%[2]s-%[3]s.tar.gz",
	}

	err := w.ensureSnapshot("scenery", "scenery", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archive of scenery could be downloaded (tried 4 URLs)")

	// No destination and no scratch leftovers.
	entries, err := os.ReadDir(w.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureSnapshotRejectsFlatArchive(t *testing.T) {
	w, _, _ := newTestWorkspace(t)

	// An archive with two top-level entries instead of one wrapping directory.
	archives := testcli.MkdirTemp(t)
	work := testcli.MkdirTemp(t)
	testcli.Chdir(t, work)
	testcli.WriteFile(t, "file1", []byte("a"))
	testcli.WriteFile(t, "file2", []byte("b"))
	testcli.Exec(t, "tar -czf "+filepath.Join(archives, "scenery-main.tar.gz")+" file1 file2")

	w.ArchiveTemplates = []string{"file://" + archives + "/%[2]s-%[3]s.tar.gz"}
	err := w.ensureSnapshot("scenery", "scenery", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a single top-level directory")

	entries, err := os.ReadDir(w.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureLive(t *testing.T) {
	setupGit(t)
	w, _, stderr := newTestWorkspace(t)

	base := testcli.MkdirTemp(t)
	makeBareRepo(t, base, "phetsims", "a-lib", map[string]string{"file1": "content"})
	w.GitBase = "file://" + base

	require.NoError(t, w.ensureLive("a-lib"))
	assert.Contains(t, stderr.String(), "cloning a-lib\n")
	assert.True(t, isLiveRepo(filepath.Join(w.Root, "a-lib")))

	data, err := os.ReadFile(filepath.Join(w.Root, "a-lib", "file1"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestEnsureLiveExistingCloneIsNoop(t *testing.T) {
	w, _, stderr := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.Root, "a-lib", ".git"), 0755))

	// GitBase points nowhere; an existing clone means no fetch is attempted.
	require.NoError(t, w.ensureLive("a-lib"))
	assert.NotContains(t, stderr.String(), "cloning")
}

func TestEnsureLiveReplacesStalePartial(t *testing.T) {
	setupGit(t)
	w, _, _ := newTestWorkspace(t)

	base := testcli.MkdirTemp(t)
	makeBareRepo(t, base, "phetsims", "a-lib", map[string]string{"file1": "content"})
	w.GitBase = "file://" + base

	// A directory without version-control metadata is a stale partial
	// acquisition and gets replaced by a fresh clone.
	require.NoError(t, os.MkdirAll(filepath.Join(w.Root, "a-lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(w.Root, "a-lib", "stale"), []byte("x"), 0644))

	require.NoError(t, w.ensureLive("a-lib"))
	assert.True(t, isLiveRepo(filepath.Join(w.Root, "a-lib")))
	_, err := os.Stat(filepath.Join(w.Root, "a-lib", "stale"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureLiveCloneFailure(t *testing.T) {
	setupGit(t)
	w, _, _ := newTestWorkspace(t)
	w.GitBase = "file:///nonexistent"

	err := w.ensureLive("a-lib")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone a-lib")
}

func TestInstallDependenciesSkipsWithoutMetadata(t *testing.T) {
	w, _, stderr := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.Root, "scenery"), 0755))

	assert.NoError(t, w.installDependenciesIfNeeded("scenery"))
	assert.NoError(t, w.installDependenciesIfNeeded("not-even-there"))
	assert.Equal(t, "", stderr.String())
}

func TestInstallDependenciesSkipsWhenInstalled(t *testing.T) {
	w, _, stderr := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.Root, "scenery", "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(w.Root, "scenery", "package.json"), []byte("{}"), 0644))

	assert.NoError(t, w.installDependenciesIfNeeded("scenery"))
	assert.NotContains(t, stderr.String(), "installing")
}
