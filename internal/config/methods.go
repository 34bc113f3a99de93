package config

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/sartorproj/goreconcile/hierarchical"
)

// MethodsFile is the yaml layout of a method list:
//
//	methods:
//	- method: bottom_up
//	- method: min_trace
//	  params:
//	    method: mint_shrink
type MethodsFile struct {
	Methods []hierarchical.Spec `yaml:"methods"`
}

// LoadMethodsFile reads a method list from a yaml file.
func LoadMethodsFile(path string) ([]hierarchical.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	specs, err := LoadMethods(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// LoadMethods reads a method list in the MethodsFile layout.
func LoadMethods(r io.Reader) ([]hierarchical.Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file MethodsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing methods: %w", err)
	}
	for i, spec := range file.Methods {
		if spec.Method == "" {
			return nil, fmt.Errorf("methods[%d]: missing method name", i)
		}
	}
	return file.Methods, nil
}

// MarshalMethods renders specs in the layout LoadMethods reads.
func MarshalMethods(specs []hierarchical.Spec) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(MethodsFile{Methods: specs},
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return nil, fmt.Errorf("marshaling methods: %w", err)
	}
	return data, nil
}
