// Package trace writes and reads zstd-compressed JSON-lines event traces.
// The first line is a Header; every following line is one event.Record.
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/crowdclash/server/internal/core/event"
	"github.com/klauspost/compress/zstd"
)

const Version = 1

// Header identifies the match a trace belongs to.
type Header struct {
	Version  int       `json:"version"`
	Match    string    `json:"match"`
	Scenario string    `json:"scenario,omitempty"`
	Seed     int64     `json:"seed"`
	Started  time.Time `json:"started"`
}

// Writer appends records to a trace file. Single goroutine only.
type Writer struct {
	path    string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	records int
}

// NewWriter creates (or truncates) path and writes the header line.
func NewWriter(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("trace dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	tw := &Writer{path: path, f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	if h.Version == 0 {
		h.Version = Version
	}
	if err := tw.writeLine(h); err != nil {
		_ = tw.Close()
		return nil, fmt.Errorf("trace header: %w", err)
	}
	return tw, nil
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Write appends one record. Records are buffered until Flush or Close.
func (w *Writer) Write(rec event.Record) error {
	if err := w.writeLine(rec); err != nil {
		return fmt.Errorf("trace write: %w", err)
	}
	w.records++
	return nil
}

// Flush pushes buffered records through the compressor.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Records returns the number of records written so far.
func (w *Writer) Records() int { return w.records }

func (w *Writer) Path() string { return w.path }

// Close flushes and closes the trace. Safe to call twice.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
	}
	errs = append(errs, w.f.Close())
	w.f, w.enc, w.w = nil, nil, nil
	return errors.Join(errs...)
}

// Reader reads a trace written by Writer.
type Reader struct {
	f      *os.File
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	header Header
}

// Open opens path and reads its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	r := &Reader{f: f, dec: dec, sc: sc}
	if !sc.Scan() {
		r.Close()
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read trace header: %w", err)
		}
		return nil, fmt.Errorf("read trace header: %w", io.ErrUnexpectedEOF)
	}
	if err := json.Unmarshal(sc.Bytes(), &r.header); err != nil {
		r.Close()
		return nil, fmt.Errorf("decode trace header: %w", err)
	}
	if r.header.Version != Version {
		r.Close()
		return nil, fmt.Errorf("trace version %d not supported", r.header.Version)
	}
	return r, nil
}

func (r *Reader) Header() Header { return r.header }

// Next returns the next record, or io.EOF at the end of the trace.
func (r *Reader) Next() (event.Record, error) {
	var rec event.Record
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return rec, err
		}
		return rec, io.EOF
	}
	if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Raw returns the bytes of the line last read by Next.
func (r *Reader) Raw() []byte { return r.sc.Bytes() }

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
