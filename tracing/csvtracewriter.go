// Package tracing provides hooks that record the accesses and line
// transitions of the data caches.
package tracing

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/duosim/timing/cache"
)

// CSVTraceWriter is a hook that stores every cache access in a CSV file.
type CSVTraceWriter struct {
	path   string
	writer io.Writer
	closer io.Closer

	records    []cache.AccessRecord
	bufferSize int
	nextID     uint64
}

// NewCSVTraceWriter creates a CSVTraceWriter. An empty path gets a
// generated name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// NewCSVTraceWriterTo creates a CSVTraceWriter that writes to w. The caller
// owns w and must call Flush before reading it.
func NewCSVTraceWriterTo(w io.Writer) *CSVTraceWriter {
	t := &CSVTraceWriter{
		writer:     w,
		bufferSize: 1000,
	}
	t.writeHeader()

	return t
}

// Path returns the file the trace is written to.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the trace file. It fails if the file already exists. The
// file is flushed and closed when the program exits through atexit.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "duosim_trace_" + xid.New().String()
	}

	filename := t.Path()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	t.writer = file
	t.closer = file

	t.writeHeader()

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

// Func records access hooks and ignores everything else.
func (t *CSVTraceWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	record, ok := ctx.Item.(cache.AccessRecord)
	if !ok {
		return
	}

	t.records = append(t.records, record)
	if len(t.records) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered records.
func (t *CSVTraceWriter) Flush() {
	for _, r := range t.records {
		t.nextID++
		fmt.Fprintf(t.writer, "%d, %s, %s, %d, %d, %t, %t, %t, %d\n",
			t.nextID,
			r.Cache,
			r.Kind,
			r.Address,
			r.Result.Data,
			r.Result.Hit,
			r.Result.FromPeer,
			r.Result.WroteBack,
			r.Result.Latency,
		)
	}

	t.records = nil
}

// Close flushes the trace and closes the file, if the writer owns one.
func (t *CSVTraceWriter) Close() error {
	t.Flush()

	if t.closer == nil {
		return nil
	}

	err := t.closer.Close()
	t.closer = nil

	return err
}

func (t *CSVTraceWriter) writeHeader() {
	fmt.Fprintf(t.writer,
		"ID, Cache, Kind, Address, Value, Hit, FromPeer, WroteBack, Latency\n")
}
