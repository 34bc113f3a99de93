package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading and saving.
type CSVOptions struct {
	IDColumn   string // Column name for series ID (default: "unique_id")
	DateColumn string // Column name for timestamps (default: "ds")
	DateFormat string // Date format (default: "2006-01-02")
	Delimiter  rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		IDColumn:   IDColumn,
		DateColumn: TimeColumn,
		DateFormat: "2006-01-02",
		Delimiter:  ',',
	}
}

// LoadCSV loads a long-format frame from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Frame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a long-format frame from an io.Reader. Every column
// other than the id and date columns is parsed as a float64 value column;
// empty, NA, NaN and null cells become NaN.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Frame, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idIdx, dateIdx := -1, -1
	var valueIdx []int
	var names []string
	for i, h := range header {
		h = clean(h)
		switch h {
		case opts.IDColumn:
			idIdx = i
		case opts.DateColumn:
			dateIdx = i
		default:
			valueIdx = append(valueIdx, i)
			names = append(names, h)
		}
	}
	if idIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.IDColumn)
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.DateColumn)
	}

	var ids []string
	var timestamps []time.Time
	values := make([][]float64, len(valueIdx))

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		ts, err := parseTime(clean(record[dateIdx]), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ids = append(ids, clean(record[idIdx]))
		timestamps = append(timestamps, ts)

		for k, idx := range valueIdx {
			v, err := parseValue(clean(record[idx]))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, names[k], err)
			}
			values[k] = append(values[k], v)
		}
	}

	if len(ids) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	frame, err := NewFrame(ids, timestamps)
	if err != nil {
		return nil, err
	}
	for k, name := range names {
		if err := frame.AddColumn(name, values[k]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// SaveCSV saves a frame to a CSV file.
func SaveCSV(frame *Frame, filename string, opts *CSVOptions) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(frame, file, opts)
}

// WriteCSV writes a frame as CSV. NaN values are written as empty cells.
func WriteCSV(frame *Frame, w io.Writer, opts *CSVOptions) error {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	buffered := bufio.NewWriter(w)
	writer := csv.NewWriter(buffered)
	writer.Comma = opts.Delimiter

	names := frame.Columns()
	if err := writer.Write(append([]string{opts.IDColumn, opts.DateColumn}, names...)); err != nil {
		return err
	}

	record := make([]string, len(names)+2)
	for i := 0; i < frame.Len(); i++ {
		record[0] = frame.IDs[i]
		record[1] = frame.Timestamps[i].Format(opts.DateFormat)
		for k, name := range names {
			v := frame.columns[name][i]
			if math.IsNaN(v) {
				record[k+2] = ""
			} else {
				record[k+2] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}

func parseTime(s, format string) (time.Time, error) {
	// Try multiple date formats
	formats := []string{
		format,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"2006",
	}
	for _, f := range formats {
		if f == "" {
			continue
		}
		if ts, err := time.Parse(f, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseValue(s string) (float64, error) {
	switch s {
	case "", "NA", "NaN", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func clean(field string) string {
	return strings.TrimSpace(strings.Trim(field, "\""))
}
