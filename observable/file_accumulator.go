package observable

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mcsim/internal/mcerrors"
)

// FileAccumulator streams observed scalar values to disk with a bounded
// in-memory cache, flushing when the cache fills and on Close. Grounded on
// the teacher's temp-file-then-rename persistence idiom
// (internal/eventlog/store.go): writes land in "<path>.tmp" and are
// renamed into place only once the stream is fully flushed, so a reader
// never observes a truncated file mid-run.
type FileAccumulator struct {
	path      string
	cacheSize int
	cache     []float64
	file      *os.File
	writer    *bufio.Writer
	wrote     int64
}

// NewFileAccumulator opens path for streaming with an in-memory cache of
// cacheSize values.
func NewFileAccumulator(path string, cacheSize int) (*FileAccumulator, error) {
	if cacheSize <= 0 {
		return nil, fmt.Errorf("%w: cacheSize must be positive, got %d", mcerrors.ErrInvalidParameter, cacheSize)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	return &FileAccumulator{
		path:      path,
		cacheSize: cacheSize,
		cache:     make([]float64, 0, cacheSize),
		file:      f,
		writer:    bufio.NewWriter(f),
	}, nil
}

// Add appends v to the in-memory cache, flushing to disk if the cache is
// now full.
func (a *FileAccumulator) Add(v float64) error {
	a.cache = append(a.cache, v)
	if len(a.cache) >= a.cacheSize {
		return a.flush()
	}
	return nil
}

func (a *FileAccumulator) flush() error {
	for _, v := range a.cache {
		if _, err := fmt.Fprintf(a.writer, "%s\n", strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
		}
		a.wrote++
	}
	a.cache = a.cache[:0]
	return nil
}

// Close flushes any remaining cached values and atomically publishes the
// file at its final path.
func (a *FileAccumulator) Close() error {
	if err := a.flush(); err != nil {
		a.file.Close()
		return err
	}
	if err := a.writer.Flush(); err != nil {
		a.file.Close()
		return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	if err := os.Rename(a.path+".tmp", a.path); err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	return nil
}

// Count returns the number of values written to disk so far (excluding
// any still sitting in the in-memory cache).
func (a *FileAccumulator) Count() int64 { return a.wrote }

// ReadFileAccumulator reads back every value written by a FileAccumulator,
// in order, reproducing exactly the observed sequence.
func ReadFileAccumulator(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	defer f.Close()

	var out []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mcerrors.ErrLoadFormat, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mcerrors.ErrLoadFormat, err)
	}
	return out, nil
}
