package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
)

// commonDeps reads the shared dependency list from the first tooling repo's
// build configuration. Missing or malformed files degrade to an empty list;
// provisioning must not stop because a config file is broken.
func (w *Workspace) commonDeps() []string {
	var cfg struct {
		Common struct {
			PhetLibs []string `json:"phetLibs"`
		} `json:"common"`
	}
	if !w.readConfig(filepath.Join(toolingRepos[0], "build.json"), &cfg) {
		return nil
	}
	return cfg.Common.PhetLibs
}

// simDeps reads a sim's own dependency list from its package metadata.
func (w *Workspace) simDeps(repo string) []string {
	var pkg struct {
		Phet struct {
			PhetLibs []string `json:"phetLibs"`
		} `json:"phet"`
	}
	if !w.readConfig(filepath.Join(repo, "package.json"), &pkg) {
		return nil
	}
	return pkg.Phet.PhetLibs
}

// readConfig parses a workspace-relative JSON file into v, tolerating comments
// and trailing commas. Returns false, after a warning, if the file is absent
// or malformed.
func (w *Workspace) readConfig(rel string, v any) bool {
	data, err := os.ReadFile(filepath.Join(w.Root, rel))
	if err != nil {
		fmt.Fprintf(w.Stderr, "warning: cannot read %s: %v\n", rel, err)
		return false
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		fmt.Fprintf(w.Stderr, "warning: %s is not valid JSON: %v\n", rel, err)
		return false
	}
	return true
}

// dependencyUnion merges dependency lists, dropping empty names, duplicates,
// and everything in exclude. The result is sorted.
func dependencyUnion(common, sim []string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	seen := make(map[string]bool)
	var union []string
	for _, name := range append(append([]string{}, common...), sim...) {
		if name == "" || skip[name] || seen[name] {
			continue
		}
		seen[name] = true
		union = append(union, name)
	}
	sort.Strings(union)
	return union
}
