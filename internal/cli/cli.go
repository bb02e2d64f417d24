// Package cli implements the brep command-line interface.
//
// The CLI renders implicit shapes described by TOML job files into STL
// (and optionally PNG) output. It is built with cobra and logs through
// charmbracelet/log; --verbose (-v) enables debug-level logging,
// including per-phase meshing progress.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "(devel)" // semantic version (e.g., "v1.2.3")
	commit  string      // git commit SHA
)

// SetVersion sets the version information displayed by --version,
// typically injected via ldflags at build time.
func SetVersion(v, c string) {
	version = v
	commit = c
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func loggerFromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok {
		return l
	}
	return charmlog.Default()
}

// Execute runs the brep CLI and returns an error if any command fails.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "brep",
		Short:        "brep meshes implicit functions into STL models",
		Long:         `brep renders the zero isosurface of implicit functions into watertight triangle meshes by adaptive dual contouring, suitable for boolean composition and 3D printing.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("brep %s\ncommit: %s\n", version, commit))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())

	return root.ExecuteContext(context.Background())
}
