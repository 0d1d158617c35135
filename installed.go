package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// readInstalled loads the persisted list of installed sims. An absent file
// means no sims are installed yet. A corrupt file is an error rather than an
// empty list, so a later write can't silently drop the user's sims.
func (w *Workspace) readInstalled() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(w.Root, installedFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sims []string
	if err := json.Unmarshal(data, &sims); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", installedFile, err)
	}
	return sims, nil
}

// writeInstalled persists the installed-sim list, deduplicated and sorted.
func (w *Workspace) writeInstalled(sims []string) error {
	seen := make(map[string]bool)
	deduped := make([]string, 0, len(sims))
	for _, sim := range sims {
		if sim == "" || seen[sim] {
			continue
		}
		seen[sim] = true
		deduped = append(deduped, sim)
	}
	sort.Strings(deduped)

	data, err := json.MarshalIndent(deduped, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(w.Root, installedFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", installedFile, err)
	}
	return nil
}

// requiredRepos recomputes every repository the installed sims still need:
// the tooling repos, each sim with its live repo, and each sim's full
// dependency union.
func (w *Workspace) requiredRepos(m Manifest, installed []string) map[string]bool {
	required := make(map[string]bool)
	for _, repo := range toolingRepos {
		required[repo] = true
	}
	common := w.commonDeps()
	for _, sim := range installed {
		entry := m.resolve(sim, w.Stderr)
		required[sim] = true
		required[entry.LiveRepo] = true
		for _, dep := range dependencyUnion(common, append(entry.Deps, w.simDeps(sim)...)) {
			required[dep] = true
		}
	}
	return required
}
