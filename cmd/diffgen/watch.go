package main

import (
	"fmt"
	"strings"

	"github.com/san-kum/diffgen/internal/config"
	"github.com/san-kum/diffgen/internal/ic"
	"github.com/san-kum/diffgen/internal/solver"
	"github.com/san-kum/diffgen/internal/viz"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		opts  = viz.Options{N: 64, Alpha: solver.DefaultAlpha, SRun: solver.DefaultSRun, Seed: config.DefaultSeed}
		muSet string
	)
	variants := make([]string, len(ic.Variants))
	for i, v := range ic.Variants {
		variants[i] = v.String()
	}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "step a diffusion field interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mu, err := config.ParseMuSet(muSet)
			if err != nil {
				return err
			}
			opts.Mu = mu
			return viz.Run(opts)
		},
	}
	cmd.Flags().IntVar(&opts.N, "n", opts.N, "grid size")
	cmd.Flags().Float32Var(&opts.Alpha, "alpha", opts.Alpha, "diffusivity")
	cmd.Flags().StringVar(&muSet, "mu-set", config.DefaultMuSet, "mu values cycled with n/p")
	cmd.Flags().Float32Var(&opts.SRun, "s-run", opts.SRun, "run stability margin")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "seed for initial conditions")
	cmd.Flags().StringVar(&opts.Variant, "ic", "", "initial condition ("+strings.Join(variants, ", ")+"); random if empty")
	cmd.Flags().StringVar(&opts.Theme, "theme", viz.ThemeInferno.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	cmd.Flags().DurationVar(&opts.Tick, "tick", 0, "delay between steps (default 33ms)")
	return cmd
}
