package main

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// gitStream runs a git command in the specified directory with output passed
// through to the given writers.
func gitStream(dir string, stdout, stderr io.Writer, args ...string) error {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runCmd runs an external command in dir with all output going to stderr.
func runCmd(dir string, stderr io.Writer, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stderr
	cmd.Stderr = stderr
	return cmd.Run()
}

// isLiveRepo reports whether dir is a version-controlled clone rather than an
// unpacked snapshot. The kind is derived from the filesystem every time; it is
// recorded nowhere else.
func isLiveRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// repoDirs lists the workspace's repository directories, sorted. Hidden
// directories (scratch space, editor droppings) are skipped.
func (w *Workspace) repoDirs() ([]string, error) {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, e.Name())
	}
	sort.Strings(dirs)
	return dirs, nil
}

// liveRepos lists the workspace's version-controlled directories, sorted.
func (w *Workspace) liveRepos() ([]string, error) {
	dirs, err := w.repoDirs()
	if err != nil {
		return nil, err
	}
	var live []string
	for _, d := range dirs {
		if isLiveRepo(filepath.Join(w.Root, d)) {
			live = append(live, d)
		}
	}
	return live, nil
}
