// Package csvwriter exports simulated observations as CSV, optionally wrapped
// in the snappy framing format.
package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/your-org/airq-dashboard/internal/indicator"
	"github.com/your-org/airq-dashboard/internal/simulator"
	"go.uber.org/zap"
)

// Stdout is the file path that selects standard output.
const Stdout = "-"

// Header is the column layout written by WriteHeader.
var Header = []string{
	"time", "city", "season", "rush_hour",
	"pm25", "temperature", "humidity", "wind_speed", "visibility", "pressure",
	"label", "category",
}

// Writer is a CSV writer for observations.
type Writer struct {
	file   *os.File
	snappy *snappy.Writer
	writer *csv.Writer
	logger *zap.Logger
	mu     sync.Mutex
	rows   int
}

// NewWriter creates a CSV writer on filePath, or on stdout when filePath is "-".
// With compress set the output is snappy framed.
func NewWriter(filePath string, compress bool, logger *zap.Logger) (*Writer, error) {
	var file *os.File
	var out io.Writer = os.Stdout
	if filePath != Stdout {
		f, err := os.Create(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV file: %w", err)
		}
		file, out = f, f
	}

	w := NewStreamWriter(out, compress, logger)
	w.file = file
	return w, nil
}

// NewStreamWriter creates a CSV writer on an arbitrary stream. Close does not
// close the stream itself.
func NewStreamWriter(out io.Writer, compress bool, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{logger: logger}
	if compress {
		w.snappy = snappy.NewBufferedWriter(out)
		out = w.snappy
	}
	w.writer = csv.NewWriter(out)
	return w
}

// Write writes a raw record.
func (w *Writer) Write(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record to CSV: %w", err)
	}
	w.rows++
	return nil
}

// WriteHeader writes the Header row.
func (w *Writer) WriteHeader() error {
	return w.Write(Header)
}

// WriteObservation writes one observation in Header order.
func (w *Writer) WriteObservation(obs simulator.Observation) error {
	r := obs.Record
	return w.Write([]string{
		obs.Time.UTC().Format(time.RFC3339),
		obs.City,
		obs.Season.String(),
		strconv.FormatBool(obs.RushHour),
		formatFloat(r.PM25),
		formatFloat(r.Temperature),
		formatFloat(r.Humidity),
		formatFloat(r.WindSpeed),
		formatFloat(r.Visibility),
		formatFloat(r.Pressure),
		strconv.Itoa(r.Label),
		indicator.CategoryName(r.Label),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rows returns the number of rows written so far, header included.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Flush flushes any buffered data to the underlying stream.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if w.snappy != nil {
		if err := w.snappy.Flush(); err != nil {
			return fmt.Errorf("failed to flush snappy stream: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the file. Standard output is left open.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.snappy != nil {
		if err := w.snappy.Close(); err != nil {
			return fmt.Errorf("failed to close snappy stream: %w", err)
		}
	}
	w.logger.Debug("CSV writer closed", zap.Int("rows", w.Rows()))
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
