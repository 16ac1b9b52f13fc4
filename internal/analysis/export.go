package analysis

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"traj_idx", "step_idx", "mu", "tau", "k_used_ref", "input_mass", "target_mass", "peak"}

// CSVWriter writes decay profiles of several trajectories under a single
// header row.
type CSVWriter struct {
	cw          *csv.Writer
	wroteHeader bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{cw: csv.NewWriter(w)}
}

func (w *CSVWriter) Write(traj int, points []Point) error {
	if !w.wroteHeader {
		if err := w.cw.Write(csvHeader); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	f32 := func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
	f64 := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, p := range points {
		row := []string{
			strconv.Itoa(traj),
			strconv.Itoa(p.Step),
			f32(p.Mu),
			f32(p.Tau),
			strconv.Itoa(p.KUsedRef),
			f64(p.InputMass),
			f64(p.TargetMass),
			f32(p.Peak),
		}
		if err := w.cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
