package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// addSim provisions everything the sim needs: the tooling repos, the sim's
// own repository (live or snapshot), its live repo when that differs, and a
// snapshot of every remaining dependency. Repositories already present are
// left alone, so re-running is cheap.
func (w *Workspace) addSim(simKey string) error {
	if simKey == "" {
		return errors.New("sim name must not be empty")
	}

	entry := w.loadManifest().resolve(simKey, w.Stderr)

	acquired := make([]string, 0, len(toolingRepos))
	for _, repo := range toolingRepos {
		if err := w.ensureLive(repo); err != nil {
			return err
		}
		if err := w.installDependenciesIfNeeded(repo); err != nil {
			return err
		}
		acquired = append(acquired, repo)
	}

	// The sim is cloned for editing when it owns its repository; when the
	// editable code lives elsewhere the sim itself is only a snapshot.
	if entry.LiveRepo == simKey {
		if err := w.ensureLive(simKey); err != nil {
			return err
		}
	} else {
		if err := w.ensureSnapshot(simKey, simKey, entry.Branch); err != nil {
			return err
		}
		if err := w.ensureLive(entry.LiveRepo); err != nil {
			return err
		}
		acquired = append(acquired, entry.LiveRepo)
	}
	acquired = append(acquired, simKey)

	common := w.commonDeps()
	simOwn := append(slices.Clone(entry.Deps), w.simDeps(simKey)...)
	exclude := append(slices.Clone(toolingRepos[:]), simKey, entry.LiveRepo)
	for _, dep := range dependencyUnion(common, simOwn, exclude...) {
		if err := w.ensureSnapshot(dep, dep, ""); err != nil {
			return err
		}
		acquired = append(acquired, dep)
	}

	installed, err := w.readInstalled()
	if err != nil {
		return err
	}
	if err := w.writeInstalled(append(installed, simKey)); err != nil {
		return err
	}

	fmt.Fprintln(w.Stdout, strings.Join(acquired, "\n"))
	fmt.Fprintf(w.Stderr, "added %s (%d repositories)\n", simKey, len(acquired))
	return nil
}

// removeSim drops the sim from the installed set and deletes every workspace
// directory the remaining sims no longer need.
func (w *Workspace) removeSim(simKey string) error {
	installed, err := w.readInstalled()
	if err != nil {
		return err
	}
	if !slices.Contains(installed, simKey) {
		fmt.Fprintf(w.Stderr, "warning: sim %q is not installed\n", simKey)
	}
	remaining := slices.DeleteFunc(slices.Clone(installed), func(s string) bool { return s == simKey })
	if err := w.writeInstalled(remaining); err != nil {
		return err
	}

	required := w.requiredRepos(w.loadManifest(), remaining)
	dirs, err := w.repoDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if required[dir] {
			continue
		}
		fmt.Fprintf(w.Stderr, "removing %s\n", dir)
		if err := os.RemoveAll(filepath.Join(w.Root, dir)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return nil
}

// listSims prints the installed sims, one per line.
func (w *Workspace) listSims() error {
	installed, err := w.readInstalled()
	if err != nil {
		return err
	}
	for _, sim := range installed {
		fmt.Fprintln(w.Stdout, sim)
	}
	return nil
}

// installAll runs the package-manager install across the whole workspace.
// Directories without package metadata are skipped.
func (w *Workspace) installAll() error {
	dirs, err := w.repoDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.installDependenciesIfNeeded(dir); err != nil {
			return err
		}
	}
	return nil
}

// vcsAll runs a git command in every version-controlled workspace directory,
// sequentially. With bestEffort a per-directory failure is reported and the
// loop continues; otherwise the first failure aborts the remaining set.
func (w *Workspace) vcsAll(bestEffort bool, args ...string) error {
	repos, err := w.liveRepos()
	if err != nil {
		return err
	}
	for _, repo := range repos {
		fmt.Fprintf(w.Stdout, "== %s\n", repo)
		if err := gitStream(filepath.Join(w.Root, repo), w.Stdout, w.Stderr, args...); err != nil {
			if bestEffort {
				fmt.Fprintf(w.Stderr, "warning: git %s failed in %s: %v\n", args[0], repo, err)
				continue
			}
			return fmt.Errorf("git %s failed in %s: %w", args[0], repo, err)
		}
	}
	return nil
}

// start launches the sim's own start command in its directory, with output
// passed through. With no sim given, the first installed sim is used.
func (w *Workspace) start(simKey string) error {
	if simKey == "" {
		installed, err := w.readInstalled()
		if err != nil {
			return err
		}
		if len(installed) == 0 {
			return errors.New("no sims installed, run add-sim first")
		}
		simKey = installed[0]
	}

	dir := filepath.Join(w.Root, simKey)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("sim %q is not in the workspace, run add-sim %s first", simKey, simKey)
	}

	fmt.Fprintf(w.Stderr, "starting %s\n", simKey)
	cmd := exec.Command("npm", "start")
	cmd.Dir = dir
	cmd.Stdout = w.Stdout
	cmd.Stderr = w.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("npm start failed in %s: %w", simKey, err)
	}
	return nil
}
