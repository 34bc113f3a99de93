package hierarchy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV loads a summing matrix from a CSV file.
func LoadCSV(filename string) (*SummingMatrix, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file)
}

// LoadCSVFromReader reads a summing matrix table. The header holds an index
// name followed by the bottom series ids; each following row holds a node id
// followed by its 0/1 entries.
func LoadCSVFromReader(r io.Reader) (*SummingMatrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading summing matrix header: %w", err)
	}
	if len(header) < 2 {
		return nil, errors.New("summing matrix needs an index column and at least one bottom series")
	}
	bottom := make([]string, len(header)-1)
	for i, h := range header[1:] {
		bottom[i] = clean(h)
	}

	var nodes []string
	var data []float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, clean(record[0]))
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(clean(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			data = append(data, v)
		}
	}

	return New(nodes, bottom, data)
}

// LoadPathsCSV reads one bottom series path per row, one level per column,
// and builds the summing matrix with FromPaths. With header set the first
// row is skipped.
func LoadPathsCSV(r io.Reader, header bool) (*SummingMatrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if header && len(records) > 0 {
		records = records[1:]
	}

	paths := make([][]string, 0, len(records))
	for _, record := range records {
		var path []string
		for _, field := range record {
			if f := clean(field); f != "" {
				path = append(path, f)
			}
		}
		paths = append(paths, path)
	}
	return FromPaths(paths)
}

// WriteCSV writes the summing matrix in the layout LoadCSVFromReader reads.
func (s *SummingMatrix) WriteCSV(w io.Writer, indexName string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(append([]string{indexName}, s.Bottom...)); err != nil {
		return err
	}
	_, nBottom := s.Dims()
	for i, id := range s.Nodes {
		record := make([]string, nBottom+1)
		record[0] = id
		for j := 0; j < nBottom; j++ {
			record[j+1] = strconv.FormatFloat(s.At(i, j), 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func clean(field string) string {
	return strings.TrimSpace(strings.Trim(field, "\""))
}
