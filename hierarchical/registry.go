package hierarchical

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goreconcile/reconcile"
)

// Built-in methods.
var (
	BottomUp = Method{
		Name:     reconcile.BottomUpName,
		Requires: []Key{KeyS},
		Run: func(in Inputs, _ Params) (*mat.Dense, error) {
			return reconcile.BottomUp(in.S, in.YHat)
		},
	}

	TopDown = Method{
		Name: reconcile.TopDownName,
		Params: []Param{{
			Name: "method",
			Allowed: []string{
				string(reconcile.AverageProportions),
				string(reconcile.ProportionAverages),
				string(reconcile.ForecastProportions),
			},
		}},
		Requires: []Key{KeyS, KeyY, KeyIdxBottom},
		Run: func(in Inputs, p Params) (*mat.Dense, error) {
			return reconcile.TopDown(in.S, in.YHat, in.Y, in.IdxBottom, reconcile.TopDownMethod(p["method"]))
		},
	}

	MinTrace = Method{
		Name: reconcile.MinTraceName,
		Params: []Param{{
			Name: "method",
			Allowed: []string{
				string(reconcile.OLS),
				string(reconcile.WLSStruct),
				string(reconcile.WLSVar),
				string(reconcile.MinTCov),
				string(reconcile.MinTShrink),
			},
		}},
		Requires: []Key{KeyS, KeyResiduals},
		Run: func(in Inputs, p Params) (*mat.Dense, error) {
			return reconcile.MinTrace(in.S, in.YHat, in.Residuals, reconcile.MinTraceMethod(p["method"]))
		},
	}
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Method{
		BottomUp.Name: BottomUp,
		TopDown.Name:  TopDown,
		MinTrace.Name: MinTrace,
	}
)

// Register adds a method to the registry. Names must be unique.
func Register(m Method) error {
	if m.Name == "" || m.Run == nil {
		return fmt.Errorf("hierarchical: method needs a name and a run function")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[m.Name]; ok {
		return fmt.Errorf("hierarchical: method %q already registered", m.Name)
	}
	registry[m.Name] = m
	return nil
}

// Lookup returns the registered method with the given name.
func Lookup(name string) (Method, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	m, ok := registry[name]
	return m, ok
}

// Methods returns every registered method sorted by name.
func Methods() []Method {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Method, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
