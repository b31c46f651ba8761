// Command buildconf validates the frontend build configuration and prints
// the JSON object handed to the build tool.
//
// Usage:
//
//	buildconf [--resolve spec]... [--root dir] [file]
//
// Without a file argument BUILD_CONFIG_FILE is read, and without either the
// built-in default is printed.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/drblury/pingcheck/buildconfig"
	"github.com/drblury/pingcheck/config"
)

// loadError marks failures past flag parsing; they exit 1 instead of 2.
type loadError struct{ err error }

func (e *loadError) Error() string { return e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)

	var le *loadError
	if errors.As(err, &le) {
		return 1
	}
	return 2
}

func newRootCmd() *cobra.Command {
	var (
		resolve []string
		root    string
	)

	cmd := &cobra.Command{
		Use:           "buildconf [file]",
		Short:         "Validate the frontend build configuration and print it as JSON",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.BuildConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			cfg := buildconfig.Default()
			if path != "" {
				loaded, err := buildconfig.LoadFile(path)
				if err != nil {
					return &loadError{err}
				}
				cfg = loaded
			}

			out := cmd.OutOrStdout()
			if len(resolve) > 0 {
				for _, spec := range resolve {
					resolved, ok := cfg.ResolveImport(spec, root)
					if !ok {
						fmt.Fprintf(out, "%s\t(not aliased)\n", spec)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", spec, resolved)
				}
				return nil
			}

			data, err := cfg.JSON()
			if err != nil {
				return &loadError{err}
			}
			_, err = fmt.Fprintf(out, "%s\n", data)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&resolve, "resolve", nil, "print how an import specifier resolves (repeatable)")
	cmd.Flags().StringVar(&root, "root", ".", "project root used by --resolve")
	return cmd
}
