package dataset

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

const (
	InputFile    = "input.bin"
	TargetFile   = "target.bin"
	MetaFile     = "meta.jsonl"
	ManifestFile = "manifest.json"

	bufferSize = 1 << 20
)

// Record is one metadata row. The k-th row describes the k-th record of both
// binary streams.
type Record struct {
	GlobalSampleIdx uint64  `json:"global_sample_idx"`
	Split           string  `json:"split"`
	TrajIdx         int     `json:"traj_idx"`
	StepIdx         int     `json:"step_idx"`
	BaseSeed        uint64  `json:"base_seed"`
	TrajSeed        uint64  `json:"traj_seed"`
	N               int     `json:"n"`
	Dx              float32 `json:"dx"`
	Alpha           float32 `json:"alpha"`
	Mu              float32 `json:"mu"`
	Tau             float32 `json:"tau"`
	SRef            float32 `json:"s_ref"`
	KUsedRef        int     `json:"k_used_ref"`
	ICType          string  `json:"ic_type"`
}

// Writer appends samples to the three streams of a run directory. It is the
// only writer of those files and is not safe for concurrent use.
type Writer struct {
	dir     string
	n       int
	files   []*os.File
	input   *bufio.Writer
	target  *bufio.Writer
	meta    *bufio.Writer
	enc     *json.Encoder
	scratch []byte
	count   uint64
}

// Create makes dir if needed and truncates the three stream files.
func Create(dir string, n int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("dataset: create output dir: %w", err)
	}

	w := &Writer{dir: dir, n: n, scratch: make([]byte, 0, 4*n*n)}
	open := func(name string) (*bufio.Writer, error) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		w.files = append(w.files, f)
		return bufio.NewWriterSize(f, bufferSize), nil
	}

	var err error
	if w.input, err = open(InputFile); err != nil {
		w.closeFiles()
		return nil, err
	}
	if w.target, err = open(TargetFile); err != nil {
		w.closeFiles()
		return nil, err
	}
	if w.meta, err = open(MetaFile); err != nil {
		w.closeFiles()
		return nil, err
	}
	w.enc = json.NewEncoder(w.meta)
	return w, nil
}

func (w *Writer) Dir() string   { return w.dir }
func (w *Writer) Count() uint64 { return w.count }

// Write appends one sample. Fields must hold exactly n*n cells.
func (w *Writer) Write(rec Record, input, target []float32) error {
	size := w.n * w.n
	if len(input) != size || len(target) != size {
		return fmt.Errorf("dataset: sample %d has %d/%d cells, want %d", rec.GlobalSampleIdx, len(input), len(target), size)
	}
	if err := w.writeField(w.input, input); err != nil {
		return err
	}
	if err := w.writeField(w.target, target); err != nil {
		return err
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("dataset: write metadata: %w", err)
	}
	w.count++
	return nil
}

func (w *Writer) writeField(bw *bufio.Writer, field []float32) error {
	buf := EncodeField(w.scratch[:0], field)
	if _, err := bw.Write(buf); err != nil {
		return fmt.Errorf("dataset: write field: %w", err)
	}
	return nil
}

// Flush pushes buffered bytes of every stream to disk.
func (w *Writer) Flush() error {
	var errs []error
	for _, bw := range []*bufio.Writer{w.input, w.target, w.meta} {
		if err := bw.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dataset: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the streams.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	return errors.Join(flushErr, w.closeFiles())
}

func (w *Writer) closeFiles() error {
	var errs []error
	for _, f := range w.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.files = nil
	return errors.Join(errs...)
}

// EncodeField appends the little-endian float32 encoding of field to dst.
func EncodeField(dst []byte, field []float32) []byte {
	for _, v := range field {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// DecodeField is the inverse of EncodeField.
func DecodeField(src []byte) []float32 {
	out := make([]float32, len(src)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}
