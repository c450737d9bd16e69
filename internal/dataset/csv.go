// Package dataset reads the CSV tables the service is started from.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row is one CSV record addressed by header name.
type Row struct {
	line   int
	header map[string]int
	record []string
}

func (r Row) Line() int { return r.line }

func (r Row) String(col string) string {
	idx, ok := r.header[col]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return r.record[idx]
}

func (r Row) Has(col string) bool {
	_, ok := r.header[col]
	return ok
}

func (r Row) Int64(col string) (int64, error) {
	s := strings.TrimSpace(r.String(col))
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// pandas writes integer columns holding NaN as floats ("123.0")
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("line %d: column %s: %q is not an integer", r.line, col, s)
		}
		v = int64(f)
	}
	return v, nil
}

func (r Row) Float64(col string) (float64, error) {
	s := strings.TrimSpace(r.String(col))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %q is not a number", r.line, col, s)
	}
	return v, nil
}

// ReadFile streams every record of a headered CSV file to fn. Columns listed in required
// must be present in the header.
func ReadFile(path string, fn func(Row) error, required ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := Read(f, fn, required...); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func Read(r io.Reader, fn func(Row) error, required ...string) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("empty file")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(Row{line: line, header: header, record: record}); err != nil {
			return err
		}
	}
}
