package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/san-kum/diffgen/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPresetsCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list split presets, or print one as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tTRAJ_START\tTRAJ_COUNT\tALPHA\tMU_SET")
				for _, name := range config.ListPresets() {
					p := config.GetPreset(name)
					fmt.Fprintf(w, "%s\t%d\t%d\t[%g, %g)\t%s\n",
						name, p.TrajStart, p.TrajCount, p.AlphaMin, p.AlphaMax, p.MuSet)
				}
				return w.Flush()
			}

			p := config.GetPreset(args[0])
			if p == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			if !asYAML {
				fmt.Fprintf(out, "%s: trajectories [%d, %d), alpha [%g, %g), mu {%s}\n",
					args[0], p.TrajStart, p.TrajStart+p.TrajCount, p.AlphaMin, p.AlphaMax, p.MuSet)
				return nil
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the preset as a yaml config file")
	return cmd
}
