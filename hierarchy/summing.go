package hierarchy

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PathSeparator joins the levels of a node path into a node id.
const PathSeparator = "/"

// SummingMatrix is the labelled aggregation structure S. Row i, column j is
// one when bottom series Bottom[j] rolls up into node Nodes[i].
// A SummingMatrix is never modified after construction.
type SummingMatrix struct {
	Nodes  []string
	Bottom []string

	data  *mat.Dense
	index map[string]int
}

// New creates a summing matrix from row-major data with one row per node and
// one column per bottom series.
func New(nodes, bottom []string, data []float64) (*SummingMatrix, error) {
	nHiers, nBottom := len(nodes), len(bottom)
	if nBottom == 0 || nHiers < nBottom {
		return nil, fmt.Errorf("%w: %d nodes, %d bottom series", ErrBadShape, nHiers, nBottom)
	}
	if len(data) != nHiers*nBottom {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrBadShape, len(data), nHiers, nBottom)
	}
	for i, v := range data {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("%w: %v at node %q", ErrNonBinary, v, nodes[i/nBottom])
		}
	}

	index := make(map[string]int, nHiers)
	for i, id := range nodes {
		if _, ok := index[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, id)
		}
		index[id] = i
	}
	seen := make(map[string]bool, nBottom)
	for _, id := range bottom {
		if seen[id] {
			return nil, fmt.Errorf("%w: bottom series %q", ErrDuplicateNode, id)
		}
		seen[id] = true
		if _, ok := index[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBottom, id)
		}
	}

	return &SummingMatrix{
		Nodes:  append([]string(nil), nodes...),
		Bottom: append([]string(nil), bottom...),
		data:   mat.NewDense(nHiers, nBottom, append([]float64(nil), data...)),
		index:  index,
	}, nil
}

// Dims returns the number of nodes and bottom series.
func (s *SummingMatrix) Dims() (nHiers, nBottom int) {
	return s.data.Dims()
}

// At returns the entry for node i and bottom series j.
func (s *SummingMatrix) At(i, j int) float64 {
	return s.data.At(i, j)
}

// Dense returns a copy of S as a dense matrix.
func (s *SummingMatrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(s.data)
}

// NodeIndex returns the row of the node with the given id.
func (s *SummingMatrix) NodeIndex(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// BottomIndex returns, for each bottom series in column order, its row in S.
func (s *SummingMatrix) BottomIndex() []int {
	idx := make([]int, len(s.Bottom))
	for j, id := range s.Bottom {
		idx[j] = s.index[id]
	}
	return idx
}

// Root returns the id of the node covering the most bottom series.
func (s *SummingMatrix) Root() string {
	nHiers, _ := s.Dims()
	root, best := 0, -1.0
	for i := 0; i < nHiers; i++ {
		if sum := floats.Sum(s.data.RawRowView(i)); sum > best {
			root, best = i, sum
		}
	}
	return s.Nodes[root]
}

// Descendants returns the bottom series that roll up into node id.
func (s *SummingMatrix) Descendants(id string) []string {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	var out []string
	for j, v := range s.data.RawRowView(i) {
		if v == 1 {
			out = append(out, s.Bottom[j])
		}
	}
	return out
}

// BottomLast reports whether the last n_bottom rows of S form the identity
// in column order, which is what bottom-up reconciliation assumes.
func (s *SummingMatrix) BottomLast() bool {
	nHiers, nBottom := s.Dims()
	offset := nHiers - nBottom
	for i := 0; i < nBottom; i++ {
		for j := 0; j < nBottom; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if s.data.At(offset+i, j) != want {
				return false
			}
		}
	}
	return true
}

// FromPaths builds S from the level paths of the bottom series, for example
// {"Total", "North", "Store1"}. Each proper prefix of a path becomes an
// aggregate node identified by its levels joined with PathSeparator.
// Aggregates are ordered by depth and then by first appearance; bottom
// series follow in input order, so the bottom rows of S are the identity.
func FromPaths(paths [][]string) (*SummingMatrix, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths", ErrBadShape)
	}

	bottom := make([]string, len(paths))
	isBottom := make(map[string]bool, len(paths))
	for j, path := range paths {
		if len(path) == 0 {
			return nil, fmt.Errorf("%w: empty path for bottom series %d", ErrBadShape, j)
		}
		id := strings.Join(path, PathSeparator)
		if isBottom[id] {
			return nil, fmt.Errorf("%w: bottom series %q", ErrDuplicateNode, id)
		}
		isBottom[id] = true
		bottom[j] = id
	}

	var levels [][]string
	seen := make(map[string]bool)
	members := make(map[string][]int)
	for j, path := range paths {
		for depth := 1; depth < len(path); depth++ {
			id := strings.Join(path[:depth], PathSeparator)
			if isBottom[id] {
				return nil, fmt.Errorf("%w: %q is both a bottom series and an aggregate", ErrBadShape, id)
			}
			if !seen[id] {
				seen[id] = true
				for len(levels) < depth {
					levels = append(levels, nil)
				}
				levels[depth-1] = append(levels[depth-1], id)
			}
			members[id] = append(members[id], j)
		}
	}

	var nodes []string
	for _, level := range levels {
		nodes = append(nodes, level...)
	}
	nAgg := len(nodes)
	nodes = append(nodes, bottom...)

	nBottom := len(bottom)
	data := make([]float64, len(nodes)*nBottom)
	for i, id := range nodes[:nAgg] {
		for _, j := range members[id] {
			data[i*nBottom+j] = 1
		}
	}
	for j := range bottom {
		data[(nAgg+j)*nBottom+j] = 1
	}

	return New(nodes, bottom, data)
}
