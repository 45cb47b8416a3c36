package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"casegraph/interfaces/render"

	"github.com/spf13/cobra"
)

func renderCmd() *cobra.Command {
	var (
		format   string
		output   string
		width    float64
		height   float64
		selected string
	)

	cmd := &cobra.Command{
		Use:   "render <caseId>",
		Short: "Render a case network to SVG or a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			painter, err := render.PainterFor(format)
			if err != nil {
				return err
			}

			session, err := loadSession(cmd, args[0], width, height)
			if err != nil {
				return err
			}
			view := session.View()
			if selected != "" && !view.ClickNode(selected) {
				return fmt.Errorf("node %q is not in case %s", selected, args[0])
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			frame := view.Snapshot()
			if err := painter.Paint(out, render.Scene{
				Title:     "Case " + args[0],
				Graph:     view.Data(),
				Frame:     frame,
				Inspector: view.Inspector(),
			}); err != nil {
				return err
			}

			if output != "" && output != "-" {
				good.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d nodes)\n", output, len(frame.Nodes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatSVG, "output format: svg or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().Float64Var(&width, "width", 800, "canvas width in pixels")
	cmd.Flags().Float64Var(&height, "height", 600, "canvas height in pixels")
	cmd.Flags().StringVar(&selected, "select", "", "node id to show in the inspector")
	return cmd
}

// loadSession fetches a case into a fresh view. Cases that cannot be shown
// are reported with the message the view would display.
func loadSession(cmd *cobra.Command, caseID string, width, height float64) (*render.Session, error) {
	view := render.NewView(width, height)
	session := render.NewSession(newClient(), view, newLogger())

	if err := session.Load(cmd.Context(), caseID); err != nil && !errors.Is(err, render.ErrStaleResponse) {
		if session.Status() == render.StatusNotFound {
			return nil, errors.New(render.MessageNoCase)
		}
		return nil, describe(err)
	}
	if msg := session.Message(); msg != "" {
		return nil, errors.New(msg)
	}
	return session, nil
}
