package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/diffgen/internal/analysis"
	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/export"
	"github.com/san-kum/diffgen/internal/viz"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var (
		maxTraj int
		csvPath string
		svgDir  string
		noPlot  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "summarize a generated run and plot mass decay per trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := dataset.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			return inspectRun(cmd.OutOrStdout(), r, inspectOptions{maxTraj: maxTraj, csvPath: csvPath, svgDir: svgDir, plot: !noPlot})
		},
	}
	cmd.Flags().IntVar(&maxTraj, "max-traj", 3, "trajectories to profile")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the profiles as CSV to this file")
	cmd.Flags().StringVar(&svgDir, "svg-dir", "", "write first and last field and mass curve of each profiled trajectory as SVG")
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the ascii plots")
	return cmd
}

type inspectOptions struct {
	maxTraj int
	csvPath string
	svgDir  string
	plot    bool
}

func inspectRun(out io.Writer, r *dataset.Reader, opts inspectOptions) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if m := r.Manifest(); m != nil {
		fmt.Fprintf(w, "run\t%s\n", m.RunID)
		fmt.Fprintf(w, "created\t%s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
		if m.Config != nil {
			fmt.Fprintf(w, "split\t%s\n", m.Config.Split)
			fmt.Fprintf(w, "seed\t%d\n", m.Config.Seed)
			fmt.Fprintf(w, "mu_set\t%s\n", m.Config.MuSet)
		}
	} else {
		fmt.Fprintf(w, "run\t(no manifest, incomplete)\n")
	}
	fmt.Fprintf(w, "grid\t%dx%d\n", r.N(), r.N())
	fmt.Fprintf(w, "samples\t%d\n", r.Len())
	status := "ok"
	if err := r.Validate(); err != nil {
		status = err.Error()
	}
	fmt.Fprintf(w, "status\t%s\n", status)
	if err := w.Flush(); err != nil {
		return err
	}

	var csvOut *analysis.CSVWriter
	if opts.csvPath != "" {
		f, err := os.Create(opts.csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		csvOut = analysis.NewCSVWriter(f)
		defer csvOut.Flush()
	}

	trajs := analysis.Trajectories(r)
	if opts.maxTraj >= 0 && len(trajs) > opts.maxTraj {
		trajs = trajs[:opts.maxTraj]
	}
	if opts.svgDir != "" {
		if err := os.MkdirAll(opts.svgDir, 0755); err != nil {
			return err
		}
	}
	for _, traj := range trajs {
		points, err := analysis.DecayProfile(r, traj)
		if err != nil {
			return err
		}
		if csvOut != nil {
			if err := csvOut.Write(traj, points); err != nil {
				return err
			}
		}

		firstIdx, lastIdx := recordSpan(r, traj)
		if opts.svgDir != "" {
			if err := writeSVGs(opts.svgDir, r, traj, firstIdx, lastIdx, points); err != nil {
				return err
			}
		}

		first := r.Records()[firstIdx]
		fmt.Fprintf(out, "\ntrajectory %d  ic=%s  alpha=%.4g  steps=%d  monotone=%t\n",
			traj, first.ICType, first.Alpha, len(points), analysis.Monotone(points))
		if !opts.plot || len(points) < 2 {
			continue
		}
		mass, peak := analysis.Series(points)
		fmt.Fprintln(out, asciigraph.Plot(mass,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("total mass"),
		))
		fmt.Fprintln(out, asciigraph.Plot(peak,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("peak"),
		))
	}
	return nil
}

// recordSpan returns the record positions of the first and last sample of
// traj.
func recordSpan(r *dataset.Reader, traj int) (first, last int) {
	first, last = -1, -1
	for k, rec := range r.Records()[:r.Len()] {
		if rec.TrajIdx == traj {
			if first < 0 {
				first = k
			}
			last = k
		}
	}
	return first, last
}

func writeSVGs(dir string, r *dataset.Reader, traj, first, last int, points []analysis.Point) error {
	in, err := r.Input(first)
	if err != nil {
		return err
	}
	tgt, err := r.Target(last)
	if err != nil {
		return err
	}
	mass, _ := analysis.Series(points)
	files := map[string]string{
		fmt.Sprintf("traj_%d_first.svg", traj): export.FieldToSVG(in, r.N(), 8, viz.ThemeInferno),
		fmt.Sprintf("traj_%d_last.svg", traj):  export.FieldToSVG(tgt, r.N(), 8, viz.ThemeInferno),
		fmt.Sprintf("traj_%d_mass.svg", traj):  export.SeriesToSVG(append([]float64{analysis.Mass(in)}, mass...), 480, 200, "#00ff88"),
	}
	for name, svg := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(svg), 0644); err != nil {
			return err
		}
	}
	return nil
}
