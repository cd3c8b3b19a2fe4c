package csvwriter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/snappy"
	"github.com/your-org/airq-dashboard/internal/learning"
	"go.uber.org/zap"
)

// featureColumns are the Header columns parsed into a learning.Reading, in Vector order.
var featureColumns = []string{"pm25", "temperature", "humidity", "wind_speed", "visibility", "pressure"}

// StreamRecordsFromCSV reads labeled records from a CSV file written by Writer
// and streams them through a channel. Columns are located by header name, so
// extra columns and reordering are tolerated. Rows that fail to parse are
// skipped with a warning. filePath "-" reads standard input.
func StreamRecordsFromCSV(ctx context.Context, filePath string, compressed bool, logger *zap.Logger) (<-chan learning.LabeledRecord, <-chan error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	recordCh := make(chan learning.LabeledRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordCh)
		defer close(errCh)

		var in io.Reader = os.Stdin
		if filePath != Stdout {
			file, err := os.Open(filePath)
			if err != nil {
				errCh <- fmt.Errorf("failed to open csv file: %w", err)
				return
			}
			defer file.Close()
			in = file
		}
		if compressed {
			in = snappy.NewReader(in)
		}

		reader := csv.NewReader(in)
		header, err := reader.Read()
		if err != nil {
			if err != io.EOF {
				errCh <- fmt.Errorf("failed to read csv header: %w", err)
			}
			return // Empty file is not an error
		}
		index, err := columnIndex(header)
		if err != nil {
			errCh <- err
			return
		}

		var total, skipped int
		for {
			select {
			case <-ctx.Done():
				logger.Info("CSV streaming cancelled by context.")
				return
			default:
			}

			row, err := reader.Read()
			if err == io.EOF {
				logger.Info("Finished streaming records from CSV",
					zap.String("path", filePath), zap.Int("records", total), zap.Int("skipped", skipped))
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("failed to read csv record: %w", err)
				return
			}

			rec, err := parseRow(row, index)
			if err != nil {
				skipped++
				logger.Warn("Skipping CSV record", zap.Error(err))
				continue
			}

			select {
			case recordCh <- rec:
				total++
			case <-ctx.Done():
				return
			}
		}
	}()

	return recordCh, errCh
}

// ReadRecords drains StreamRecordsFromCSV into a slice.
func ReadRecords(ctx context.Context, filePath string, compressed bool, logger *zap.Logger) ([]learning.LabeledRecord, error) {
	recordCh, errCh := StreamRecordsFromCSV(ctx, filePath, compressed, logger)
	var records []learning.LabeledRecord
	for rec := range recordCh {
		records = append(records, rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// columnIndex maps the feature and label columns to their positions.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range append(featureColumns, "label") {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (learning.LabeledRecord, error) {
	values := make([]float64, len(featureColumns))
	for i, name := range featureColumns {
		pos := index[name]
		if pos >= len(row) {
			return learning.LabeledRecord{}, fmt.Errorf("row has %d columns, %q is at %d", len(row), name, pos)
		}
		v, err := strconv.ParseFloat(row[pos], 64)
		if err != nil {
			return learning.LabeledRecord{}, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		values[i] = v
	}

	pos := index["label"]
	if pos >= len(row) {
		return learning.LabeledRecord{}, fmt.Errorf("row has %d columns, label is at %d", len(row), pos)
	}
	label, err := strconv.Atoi(row[pos])
	if err != nil {
		return learning.LabeledRecord{}, fmt.Errorf("failed to parse label: %w", err)
	}

	rec := learning.LabeledRecord{
		Reading: learning.Reading{
			PM25:        values[0],
			Temperature: values[1],
			Humidity:    values[2],
			WindSpeed:   values[3],
			Visibility:  values[4],
			Pressure:    values[5],
		},
		Label: label,
	}
	if !rec.Valid() {
		return learning.LabeledRecord{}, fmt.Errorf("label %d out of range", label)
	}
	return rec, nil
}
