package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// loadManifest reads the sim manifest from the workspace root. The manifest is
// author-maintained, so comments and trailing commas are tolerated. A missing
// or unparseable file degrades to an empty manifest.
func (w *Workspace) loadManifest() Manifest {
	path := filepath.Join(w.Root, manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if w.Verbose {
			fmt.Fprintf(w.Stderr, "no manifest at %s\n", path)
		}
		return Manifest{}
	}

	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		fmt.Fprintf(w.Stderr, "warning: %s is not valid JSON: %v\n", manifestFile, err)
		return Manifest{}
	}
	return m
}

// resolve returns the manifest entry for simKey. Unknown keys get a synthetic
// entry assuming the sim lives in a repository of the same name; resolve never
// fails.
func (m Manifest) resolve(simKey string, stderr io.Writer) SimEntry {
	for _, e := range m.Sims {
		if e.Sim != simKey {
			continue
		}
		if e.LiveRepo == "" {
			e.LiveRepo = simKey
		}
		return e
	}
	fmt.Fprintf(stderr, "warning: sim %q is not in the manifest, assuming repository %q\n", simKey, simKey)
	return SimEntry{Sim: simKey, LiveRepo: simKey}
}
