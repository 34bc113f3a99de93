package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sartorproj/goreconcile/hierarchical"
	"github.com/sartorproj/goreconcile/internal/config"
)

func (a *app) methodsCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List reconciliation methods and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			methods := hierarchical.Methods()
			if asYAML {
				data, err := config.MarshalMethods(exampleSpecs(methods))
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			var rows [][]string
			for _, m := range methods {
				requires := make([]string, len(m.Requires))
				for i, k := range m.Requires {
					requires[i] = string(k)
				}
				if len(m.Params) == 0 {
					rows = append(rows, []string{m.Name, "-", "-", "-", strings.Join(requires, ",")})
					continue
				}
				for _, p := range m.Params {
					def := "-"
					if p.HasDefault {
						def = p.Default
					}
					rows = append(rows, []string{m.Name, p.Name, def, strings.Join(p.Allowed, ","), strings.Join(requires, ",")})
				}
			}
			return renderTable(cmd.OutOrStdout(), []string{"method", "parameter", "default", "values", "requires"}, rows)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print a methods file using every allowed value")
	return cmd
}

// exampleSpecs expands each method into one spec per allowed value of its
// first parameter.
func exampleSpecs(methods []hierarchical.Method) []hierarchical.Spec {
	var specs []hierarchical.Spec
	for _, m := range methods {
		if len(m.Params) == 0 || len(m.Params[0].Allowed) == 0 {
			specs = append(specs, hierarchical.Spec{Method: m.Name})
			continue
		}
		p := m.Params[0]
		for _, v := range p.Allowed {
			specs = append(specs, hierarchical.Spec{Method: m.Name, Params: map[string]string{p.Name: v}})
		}
	}
	return specs
}
