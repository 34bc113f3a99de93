package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Default column names of long-format tables.
const (
	IDColumn     = "unique_id"
	TimeColumn   = "ds"
	TargetColumn = "y"
)

var (
	// ErrLengthMismatch is returned when a column length differs from the frame length.
	ErrLengthMismatch = errors.New("timeseries: column length does not match frame")

	// ErrDuplicateColumn is returned when a column name is already taken.
	ErrDuplicateColumn = errors.New("timeseries: duplicate column")

	// ErrMissingColumn is returned when a requested column does not exist.
	ErrMissingColumn = errors.New("timeseries: missing column")

	// ErrMissingSeries is returned when a requested node has no rows.
	ErrMissingSeries = errors.New("timeseries: missing series")

	// ErrDuplicateRow is returned when a (unique_id, ds) pair appears twice.
	ErrDuplicateRow = errors.New("timeseries: duplicate row")
)

// Frame is a long-format table: one row per (series id, timestamp) and any
// number of named float64 value columns. NaN marks a missing value.
type Frame struct {
	IDs        []string
	Timestamps []time.Time

	names   []string
	columns map[string][]float64
}

// NewFrame creates a frame with the given row keys and no value columns.
func NewFrame(ids []string, timestamps []time.Time) (*Frame, error) {
	if len(ids) != len(timestamps) {
		return nil, fmt.Errorf("%w: %d ids, %d timestamps", ErrLengthMismatch, len(ids), len(timestamps))
	}
	return &Frame{
		IDs:        ids,
		Timestamps: timestamps,
		columns:    make(map[string][]float64),
	}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.IDs)
}

// AddColumn appends a value column. The frame takes ownership of values.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != f.Len() {
		return fmt.Errorf("%w: column %q has %d values, frame has %d rows", ErrLengthMismatch, name, len(values), f.Len())
	}
	if _, ok := f.columns[name]; ok || name == IDColumn || name == TimeColumn {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	f.names = append(f.names, name)
	f.columns[name] = values
	return nil
}

// Columns returns the value column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// HasColumn reports whether the frame holds a value column called name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns a copy of the named value column.
func (f *Frame) Column(name string) ([]float64, bool) {
	values, ok := f.columns[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), values...), true
}

// Copy creates a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out := &Frame{
		IDs:        append([]string(nil), f.IDs...),
		Timestamps: append([]time.Time(nil), f.Timestamps...),
		names:      append([]string(nil), f.names...),
		columns:    make(map[string][]float64, len(f.columns)),
	}
	for name, values := range f.columns {
		out.columns[name] = append([]float64(nil), values...)
	}
	return out
}

// Series returns the named column of one series, sorted by timestamp.
func (f *Frame) Series(id, column string) (*Series, error) {
	values, ok := f.columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	var rows []int
	for i, rowID := range f.IDs {
		if rowID == id {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingSeries, id)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return f.Timestamps[rows[a]].Before(f.Timestamps[rows[b]])
	})

	s := &Series{
		ID:         id,
		Column:     column,
		Timestamps: make([]time.Time, len(rows)),
		Values:     make([]float64, len(rows)),
	}
	for k, i := range rows {
		s.Timestamps[k] = f.Timestamps[i]
		s.Values[k] = values[i]
	}
	return s, nil
}

// Layout maps frame rows onto a matrix with one row per series, in a
// caller-chosen order, and one column per distinct timestamp in ascending
// order. Frame rows of series outside the layout are ignored.
type Layout struct {
	Rows       []string
	Timestamps []time.Time

	cells [][2]int // per frame row: matrix row and column, or -1
}

// Layout builds the pivot layout of the frame for the given series order.
// Every listed series must have at least one row and every
// (series, timestamp) pair may appear only once.
func (f *Frame) Layout(rows []string) (*Layout, error) {
	rowIndex := make(map[string]int, len(rows))
	for i, id := range rows {
		rowIndex[id] = i
	}

	present := make([]bool, len(rows))
	stamps := make(map[int64]time.Time)
	for i, id := range f.IDs {
		r, ok := rowIndex[id]
		if !ok {
			continue
		}
		present[r] = true
		stamps[f.Timestamps[i].UnixNano()] = f.Timestamps[i]
	}
	for r, ok := range present {
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingSeries, rows[r])
		}
	}

	timestamps := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(a, b int) bool { return timestamps[a].Before(timestamps[b]) })
	colIndex := make(map[int64]int, len(timestamps))
	for c, ts := range timestamps {
		colIndex[ts.UnixNano()] = c
	}

	l := &Layout{
		Rows:       append([]string(nil), rows...),
		Timestamps: timestamps,
		cells:      make([][2]int, f.Len()),
	}
	seen := make(map[[2]int]bool, f.Len())
	for i, id := range f.IDs {
		r, ok := rowIndex[id]
		if !ok {
			l.cells[i] = [2]int{-1, -1}
			continue
		}
		cell := [2]int{r, colIndex[f.Timestamps[i].UnixNano()]}
		if seen[cell] {
			return nil, fmt.Errorf("%w: %q at %s", ErrDuplicateRow, id, f.Timestamps[i].Format(time.RFC3339))
		}
		seen[cell] = true
		l.cells[i] = cell
	}
	return l, nil
}

// Pivot reshapes a value column into a len(Rows) × len(Timestamps) matrix.
// Cells without a frame row are NaN. The layout must come from this frame.
func (f *Frame) Pivot(column string, l *Layout) (*mat.Dense, error) {
	values, ok := f.columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	m := mat.NewDense(len(l.Rows), len(l.Timestamps), nil)
	raw := m.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] = math.NaN()
	}
	for i, cell := range l.cells {
		if cell[0] < 0 {
			continue
		}
		m.Set(cell[0], cell[1], values[i])
	}
	return m, nil
}

// Unpivot is the inverse of Pivot: it reads m back into frame row order.
// Rows of series outside the layout get NaN.
func (f *Frame) Unpivot(m mat.Matrix, l *Layout) ([]float64, error) {
	r, c := m.Dims()
	if r != len(l.Rows) || c != len(l.Timestamps) {
		return nil, fmt.Errorf("%w: matrix is %dx%d, layout is %dx%d",
			ErrLengthMismatch, r, c, len(l.Rows), len(l.Timestamps))
	}

	out := make([]float64, f.Len())
	for i, cell := range l.cells {
		if cell[0] < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = m.At(cell[0], cell[1])
	}
	return out, nil
}
