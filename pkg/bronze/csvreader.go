package bronze

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
)

var ErrSourceNotFound = errors.New("source file not found")

// Row is one parsed CSV line keyed by column name. Columns missing from the
// file header are absent; blank or unparseable cells are nil.
type Row map[string]any

// RowError marks a single CSV line that could not be turned into a Row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}

type ReadStats struct {
	Total  int64
	Errors int64
}

// CSVReader streams a raw table's CSV file in fixed-size batches.
type CSVReader struct {
	file       *os.File
	schema     Schema
	batchSize  int
	skipErrors bool
	stats      ReadStats
}

// OpenCSV opens <dir>/<TABLE>.csv. A missing file is reported as
// ErrSourceNotFound.
func OpenCSV(dir string, schema Schema, batchSize int, skipErrors bool) (*CSVReader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	path := filepath.Join(dir, schema.FileName())
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &CSVReader{
		file:       f,
		schema:     schema,
		batchSize:  batchSize,
		skipErrors: skipErrors,
	}, nil
}

func (r *CSVReader) Close() error {
	return r.file.Close()
}

func (r *CSVReader) Stats() ReadStats {
	return r.stats
}

// Batches yields rows in file order. A terminal error is yielded once with
// a nil batch and ends the sequence.
func (r *CSVReader) Batches(ctx context.Context) iter.Seq2[[]Row, error] {
	return func(yield func([]Row, error) bool) {
		cr := csv.NewReader(bufio.NewReader(r.file))

		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("read header of %s: %w", r.schema.FileName(), err))
			return
		}
		columns := r.columnIndex(header)

		batch := make([]Row, 0, r.batchSize)
		rowNum := 0
		for {
			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			rowNum++

			var row Row
			if err == nil {
				row, err = r.parseRecord(record, columns)
			} else {
				var pe *csv.ParseError
				if !errors.As(err, &pe) {
					yield(nil, fmt.Errorf("read %s: %w", r.schema.FileName(), err))
					return
				}
			}

			r.stats.Total++
			if err != nil {
				r.stats.Errors++
				rowErr := &RowError{Row: rowNum, Err: err}
				if !r.skipErrors {
					yield(nil, rowErr)
					return
				}
				logger.Log.WithFields(logrus.Fields{
					"table": r.schema.Table,
					"row":   rowNum,
				}).WithError(err).Warn("skipping malformed row")
				continue
			}

			batch = append(batch, row)
			if len(batch) >= r.batchSize {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !yield(batch, nil) {
					return
				}
				batch = make([]Row, 0, r.batchSize)
			}
		}

		if len(batch) > 0 {
			yield(batch, nil)
		}
	}
}

// columnIndex maps every schema field to its header position, or -1.
func (r *CSVReader) columnIndex(header []string) []int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		pos[name] = i
	}

	idx := make([]int, len(r.schema.Fields))
	for i, f := range r.schema.Fields {
		if p, ok := pos[f.Name]; ok {
			idx[i] = p
		} else {
			idx[i] = -1
		}
	}
	return idx
}

func (r *CSVReader) parseRecord(record []string, columns []int) (Row, error) {
	row := make(Row, len(r.schema.Fields))
	for i, f := range r.schema.Fields {
		p := columns[i]
		if p < 0 {
			continue
		}
		row[f.Name] = Parse(f.Name, record[p], f.Kind)
	}

	if row[r.schema.Key] == nil {
		return nil, fmt.Errorf("missing key %s", r.schema.Key)
	}
	return row, nil
}
