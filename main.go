package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	w := &Workspace{
		Stdout: stdout,
		Stderr: stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "simws",
		Short: "Provision and maintain a sim development workspace",
		Long:  "A tool to fetch the repositories a sim depends on, keep them up to date, and run the local development session.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(w.Root, 0755); err != nil {
				return fmt.Errorf("failed to create workspace root: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&w.Root, "root", ".", "workspace root directory")
	rootCmd.PersistentFlags().StringVar(&w.Owner, "owner", "phetsims", "repository owner on the remote host")
	rootCmd.PersistentFlags().StringVar(&w.GitBase, "github", "https://github.com", "base URL for clones")
	rootCmd.PersistentFlags().BoolVarP(&w.Verbose, "verbose", "v", false, "verbose output")

	w.ArchiveTemplates = []string{
		"https://github.com/%[1]s/%[2]s/archive/refs/heads/%[3]s.tar.gz",
		"https://codeload.github.com/%[1]s/%[2]s/tar.gz/refs/heads/%[3]s",
	}
	w.DevServerArgs = []string{"npm", "run", "dev"}
	w.WatcherArgs = []string{"npm", "run", "watch-strings"}

	addSimCmd := &cobra.Command{
		Use:   "add-sim <sim>",
		Short: "Fetch a sim and everything it depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.addSim(args[0])
		},
	}

	removeSimCmd := &cobra.Command{
		Use:   "remove-sim <sim>",
		Short: "Forget a sim and delete repositories nothing else needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.removeSim(args[0])
		},
	}

	listSimsCmd := &cobra.Command{
		Use:   "list-sims",
		Short: "List the installed sims",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.listSims()
		},
	}

	installAllCmd := &cobra.Command{
		Use:   "install-all",
		Short: "Install package dependencies across the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.installAll()
		},
	}

	statusAllCmd := &cobra.Command{
		Use:     "status-all",
		Aliases: []string{"status"},
		Short:   "Show version-control status of every cloned repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.vcsAll(true, "status", "--short", "--branch")
		},
	}

	pullAllCmd := &cobra.Command{
		Use:     "pull-all",
		Aliases: []string{"pull"},
		Short:   "Pull every cloned repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.vcsAll(false, "pull")
		},
	}

	pushAllCmd := &cobra.Command{
		Use:     "push-all",
		Aliases: []string{"push"},
		Short:   "Push every cloned repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.vcsAll(false, "push")
		},
	}

	cleanAllCmd := &cobra.Command{
		Use:   "clean-all",
		Short: "Remove untracked files from every cloned repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.vcsAll(false, "clean", "-fd")
		},
	}

	startCmd := &cobra.Command{
		Use:   "start [sim]",
		Short: "Run a sim's own start command",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			simKey := ""
			if len(args) == 1 {
				simKey = args[0]
			}
			return w.start(simKey)
		},
	}

	ensureEntrCmd := &cobra.Command{
		Use:   "ensure-entr",
		Short: "Install the entr file watcher if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ensureEntr(stderr)
		},
	}

	devCmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the tooling dev server and strings watcher together",
		RunE: func(cmd *cobra.Command, args []string) error {
			return w.devSession(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		addSimCmd, removeSimCmd, listSimsCmd,
		installAllCmd, statusAllCmd, pullAllCmd, pushAllCmd, cleanAllCmd,
		startCmd, ensureEntrCmd, devCmd,
	)
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var sessErr *sessionError
		if errors.As(err, &sessErr) {
			return sessErr.code
		}
		return 1
	}
	return 0
}
