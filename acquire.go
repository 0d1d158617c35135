package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// snapshotCandidates builds the ordered list of archive URLs to try for a
// repository. With no branch hint the default branch names are tried in order,
// each against every template.
func (w *Workspace) snapshotCandidates(name, branchHint string) []string {
	branches := []string{branchHint}
	if branchHint == "" {
		branches = defaultBranches[:]
	}
	var urls []string
	for _, branch := range branches {
		for _, tmpl := range w.ArchiveTemplates {
			urls = append(urls, fmt.Sprintf(tmpl, w.Owner, name, branch))
		}
	}
	return urls
}

// ensureSnapshot downloads and unpacks an archive of the repository into
// destName under the workspace root. An existing destination is left
// untouched, whatever its kind.
func (w *Workspace) ensureSnapshot(name, destName, branchHint string) error {
	dest := filepath.Join(w.Root, destName)
	if _, err := os.Stat(dest); err == nil {
		if w.Verbose {
			fmt.Fprintf(w.Stderr, "%s already present, skipping\n", destName)
		}
		return nil
	}

	// Scratch space lives under the workspace root so the final rename never
	// crosses a filesystem boundary.
	scratch, err := os.MkdirTemp(w.Root, ".snapshot-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	archive := filepath.Join(scratch, "archive.tar.gz")
	candidates := w.snapshotCandidates(name, branchHint)
	fetched := false
	for _, url := range candidates {
		if w.Verbose {
			fmt.Fprintf(w.Stderr, "trying %s\n", url)
		}
		if runCmd(scratch, w.Stderr, "curl", "-fsSL", "-o", archive, url) == nil {
			fetched = true
			break
		}
	}
	if !fetched {
		return fmt.Errorf("no archive of %s could be downloaded (tried %d URLs)", name, len(candidates))
	}

	unpacked := filepath.Join(scratch, "unpacked")
	if err := os.Mkdir(unpacked, 0755); err != nil {
		return fmt.Errorf("failed to create unpack directory: %w", err)
	}
	if err := runCmd(scratch, w.Stderr, "tar", "-xzf", archive, "-C", unpacked); err != nil {
		return fmt.Errorf("failed to unpack archive of %s: %w", name, err)
	}

	// Archives wrap their contents in a single name-branch directory; that
	// directory becomes the destination.
	entries, err := os.ReadDir(unpacked)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return fmt.Errorf("archive of %s does not contain a single top-level directory", name)
	}
	if err := os.Rename(filepath.Join(unpacked, entries[0].Name()), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	fmt.Fprintf(w.Stderr, "unpacked %s\n", destName)
	return nil
}

// ensureLive clones the repository for local editing. A directory that is
// already a clone is left untouched; a directory without version-control
// metadata is a stale partial acquisition and is replaced.
func (w *Workspace) ensureLive(name string) error {
	dest := filepath.Join(w.Root, name)
	if isLiveRepo(dest) {
		if w.Verbose {
			fmt.Fprintf(w.Stderr, "%s already cloned, skipping\n", name)
		}
		return nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove stale %s: %w", name, err)
	}

	url := fmt.Sprintf("%s/%s/%s.git", w.GitBase, w.Owner, name)
	fmt.Fprintf(w.Stderr, "cloning %s\n", name)
	if err := runCmd(w.Root, w.Stderr, "git", "clone", "--depth", "1", "--single-branch", url, dest); err != nil {
		return fmt.Errorf("failed to clone %s: %w", name, err)
	}
	return nil
}

// installDependenciesIfNeeded runs the package manager in the repository when
// its dependencies have not been installed yet. Repositories without package
// metadata are skipped.
func (w *Workspace) installDependenciesIfNeeded(name string) error {
	dir := filepath.Join(w.Root, name)
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, "node_modules")); err == nil {
		if w.Verbose {
			fmt.Fprintf(w.Stderr, "%s dependencies already installed, skipping\n", name)
		}
		return nil
	}

	sub := "install"
	if _, err := os.Stat(filepath.Join(dir, "package-lock.json")); err == nil {
		sub = "ci"
	}
	fmt.Fprintf(w.Stderr, "installing dependencies for %s\n", name)
	if err := runCmd(dir, w.Stderr, "npm", sub); err != nil {
		return fmt.Errorf("npm %s failed in %s: %w", sub, name, err)
	}
	return nil
}
