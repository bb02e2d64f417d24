package cli

import (
	"fmt"
	"time"

	"github.com/implicitcad/brep/internal/d3"
	"github.com/implicitcad/brep/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render job.toml",
		Short: "Render an implicit shape to STL",
		Long: `Render reads a TOML job file describing a shape, a region and the
mesher settings, renders the shape by adaptive dual contouring and
writes a binary STL file. When output.png is set a shaded preview
image is rasterised next to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			j, err := loadJob(args[0])
			if err != nil {
				return err
			}
			f, err := buildShape(j.Shape)
			if err != nil {
				return err
			}

			settings := j.settings()
			settings.Progress = newLogProgress(logger)
			logger.Info("rendering",
				"shape", j.Shape.Name,
				"min_feature", settings.MinFeature,
				"workers", settings.Workers)

			start := time.Now()
			mesh, err := render.Render(f, j.region(), settings)
			if err != nil {
				return fmt.Errorf("render %s: %w", j.Shape.Name, err)
			}
			logger.Info("meshed",
				"verts", len(mesh.Verts)-1,
				"triangles", len(mesh.Branes),
				"elapsed", time.Since(start))

			if err := render.CreateSTL(j.Output.STL, mesh); err != nil {
				return fmt.Errorf("write STL: %w", err)
			}
			logger.Info("wrote", "stl", j.Output.STL)

			if j.Output.PNG != "" {
				view := render.ViewConfig{
					Up:     r3.Vec{Z: 1},
					Eyepos: d3.Elem(3),
					Near:   1,
					Far:    10,
				}
				if err := render.STLToPNG(j.Output.STL, j.Output.PNG, view); err != nil {
					return fmt.Errorf("write PNG: %w", err)
				}
				logger.Info("wrote", "png", j.Output.PNG)
			}
			return nil
		},
	}
}
