package hierarchical

import (
	"gonum.org/v1/gonum/mat"
)

// Key names a value of the shared reconciliation context.
type Key string

// Context keys a method can require.
const (
	// KeyY is the history, n_hiers × T in S row order.
	KeyY Key = "y"
	// KeyS is the dense summing matrix.
	KeyS Key = "S"
	// KeyIdxBottom is the row of each bottom series within S.
	KeyIdxBottom Key = "idx_bottom"
	// KeyResiduals is the model's in-sample residuals, T × n_hiers. It is
	// only supplied when the history holds a column named after the model.
	KeyResiduals Key = "residuals"
)

// Context holds the values shared by every (model, method) pair of one
// reconciliation call. It is never modified once built.
type Context struct {
	Y         *mat.Dense
	S         *mat.Dense
	IdxBottom []int
}

// Inputs are the values handed to one method run. Only the keys the method
// requires are filled in; YHat is always set.
type Inputs struct {
	Y         *mat.Dense
	S         *mat.Dense
	IdxBottom []int
	YHat      *mat.Dense
	Residuals *mat.Dense
}

// Param declares a method parameter.
type Param struct {
	Name       string
	Default    string
	HasDefault bool
	Allowed    []string
}

// Params maps parameter names to values.
type Params map[string]string

// RunFunc reconciles one forecast matrix.
type RunFunc func(in Inputs, params Params) (*mat.Dense, error)

// Method describes a reconciliation method: its parameters, the context
// values it needs, and how to run it.
type Method struct {
	Name     string
	Params   []Param
	Requires []Key
	Run      RunFunc
}

// Needs reports whether the method requires the given context key.
func (m Method) Needs(key Key) bool {
	for _, k := range m.Requires {
		if k == key {
			return true
		}
	}
	return false
}

// Param returns the declared parameter with the given name.
func (m Method) Param(name string) (Param, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// inputs selects the values m requires.
func (m Method) inputs(ctx Context, yHat, residuals *mat.Dense) Inputs {
	in := Inputs{YHat: yHat}
	for _, k := range m.Requires {
		switch k {
		case KeyY:
			in.Y = ctx.Y
		case KeyS:
			in.S = ctx.S
		case KeyIdxBottom:
			in.IdxBottom = ctx.IdxBottom
		case KeyResiduals:
			in.Residuals = residuals
		}
	}
	return in
}
