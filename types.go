package main

import "io"

// SimEntry describes where a sim's sources live: the repository to clone for
// editing, any extra repositories to fetch as snapshots, and an optional
// branch to snapshot the sim itself from.
type SimEntry struct {
	Sim      string   `json:"sim"`
	LiveRepo string   `json:"liveRepo"`
	Deps     []string `json:"deps"`
	Branch   string   `json:"branch,omitempty"`
}

// Manifest maps sim keys to their entries.
type Manifest struct {
	Sims []SimEntry `json:"sims"`
}

// Workspace holds the paths and remote endpoints every command operates on.
type Workspace struct {
	Root    string
	Owner   string
	GitBase string

	// Ordered archive URL templates, each formatted with owner, repo name,
	// and branch.
	ArchiveTemplates []string

	// Commands run by the dev session, both with the first tooling repo as
	// working directory.
	DevServerArgs []string
	WatcherArgs   []string

	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
}

// The two repositories every sim needs regardless of manifest content. The
// first one carries the shared build configuration.
var toolingRepos = [2]string{"chipper", "perennial"}

var defaultBranches = [2]string{"main", "master"}

const (
	manifestFile  = "sims.json"
	installedFile = "installed-sims.json"
)
