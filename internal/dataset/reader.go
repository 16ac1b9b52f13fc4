package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTruncated reports a stream that ends in a partial record or streams
// that disagree on the record count.
var ErrTruncated = errors.New("dataset: truncated run")

// Reader gives random access to the records of a run directory.
type Reader struct {
	dir      string
	n        int
	manifest *Manifest
	meta     []Record
	input    *os.File
	target   *os.File
	inCount  int
	tgtCount int
	partial  bool
}

// Open reads the metadata stream and sizes the binary streams. Trailing
// partial records are ignored; Validate reports them.
func Open(dir string) (*Reader, error) {
	r := &Reader{dir: dir}

	if m, err := ReadManifest(dir); err == nil {
		r.manifest = m
		r.n = m.N
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	meta, partial, err := readMeta(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, err
	}
	r.meta, r.partial = meta, partial
	if r.n == 0 {
		if len(meta) == 0 {
			return nil, fmt.Errorf("dataset: %s: no manifest and no metadata to infer grid size", dir)
		}
		r.n = meta[0].N
	}
	if r.n < 1 {
		return nil, fmt.Errorf("dataset: %s: invalid grid size %d", dir, r.n)
	}

	if r.input, r.inCount, err = r.openStream(InputFile); err != nil {
		return nil, err
	}
	if r.target, r.tgtCount, err = r.openStream(TargetFile); err != nil {
		r.input.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) openStream(name string) (*os.File, int, error) {
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		return nil, 0, fmt.Errorf("dataset: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	rb := int64(RecordBytes(r.n))
	if st.Size()%rb != 0 {
		r.partial = true
	}
	return f, int(st.Size() / rb), nil
}

func readMeta(path string) ([]Record, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("dataset: %w", err)
	}

	lines := bytes.Split(data, []byte{'\n'})
	// Rows are newline-terminated; anything after the last newline was cut
	// short by an interrupted run.
	partial := len(lines[len(lines)-1]) > 0
	lines = lines[:len(lines)-1]

	out := make([]Record, 0, len(lines))
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, false, fmt.Errorf("dataset: metadata line %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, partial, nil
}

func (r *Reader) N() int              { return r.n }
func (r *Reader) Manifest() *Manifest { return r.manifest }
func (r *Reader) Records() []Record   { return r.meta }

// Len is the number of complete samples present in all three streams.
func (r *Reader) Len() int {
	return min(len(r.meta), r.inCount, r.tgtCount)
}

// Validate reports ErrTruncated for partial trailing records or streams of
// unequal length, and checks that global indices are contiguous.
func (r *Reader) Validate() error {
	if r.partial {
		return fmt.Errorf("%w: trailing partial record", ErrTruncated)
	}
	if len(r.meta) != r.inCount || len(r.meta) != r.tgtCount {
		return fmt.Errorf("%w: %d metadata rows, %d inputs, %d targets", ErrTruncated, len(r.meta), r.inCount, r.tgtCount)
	}
	if r.manifest != nil && uint64(len(r.meta)) != r.manifest.Samples {
		return fmt.Errorf("%w: manifest lists %d samples, found %d", ErrTruncated, r.manifest.Samples, len(r.meta))
	}
	for k, rec := range r.meta {
		if rec.GlobalSampleIdx != r.meta[0].GlobalSampleIdx+uint64(k) {
			return fmt.Errorf("dataset: row %d has global index %d, want %d", k, rec.GlobalSampleIdx, r.meta[0].GlobalSampleIdx+uint64(k))
		}
	}
	return nil
}

func (r *Reader) Input(k int) ([]float32, error)  { return r.readRecord(r.input, k) }
func (r *Reader) Target(k int) ([]float32, error) { return r.readRecord(r.target, k) }

func (r *Reader) readRecord(f *os.File, k int) ([]float32, error) {
	if k < 0 || k >= r.Len() {
		return nil, fmt.Errorf("dataset: record %d out of range [0, %d)", k, r.Len())
	}
	rb := RecordBytes(r.n)
	buf := make([]byte, rb)
	if _, err := f.ReadAt(buf, int64(k)*int64(rb)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: read record %d: %w", k, err)
	}
	return DecodeField(buf), nil
}

func (r *Reader) Close() error {
	return errors.Join(r.input.Close(), r.target.Close())
}
