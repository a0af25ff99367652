package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

var (
	buildFormat string
	buildValues string
	buildList   bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "json", "output format (json or yaml)")
	buildCmd.Flags().StringVar(&buildValues, "values", "", "JSON or YAML file with values to apply after building")
	buildCmd.Flags().BoolVar(&buildList, "list", false, "list the form ids found in the directory")
}

// buildReport is what `build` prints: the annotated tree plus the state of
// the controls built from it.
type buildReport struct {
	ID           string              `json:"id" yaml:"id"`
	RootCSSClass string              `json:"rootCssClass" yaml:"rootCssClass"`
	Arrays       []string            `json:"arrays,omitempty" yaml:"arrays,omitempty"`
	Valid        bool                `json:"valid" yaml:"valid"`
	Errors       map[string][]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Value        map[string]any      `json:"value" yaml:"value"`
	Field        field.Field         `json:"field" yaml:"field"`
}

var buildCmd = &cobra.Command{
	Use:   "build <definitions-dir> [form-id]",
	Short: "Build a form from definition files and print its field tree and values",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStore(args[0])
		if err != nil {
			return err
		}
		if buildList || len(args) == 1 {
			for _, id := range store.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}

		facade, err := buildFacade(store, args[1])
		if err != nil {
			return err
		}
		if buildValues != "" {
			values, err := readValues(buildValues)
			if err != nil {
				return err
			}
			unknown, err := render.ApplyValues(facade.Controls, values)
			if err != nil {
				return err
			}
			for _, path := range unknown {
				warnf(cmd.ErrOrStderr(), "no control at %q", path)
			}
		}

		report := buildReport{
			ID:           args[1],
			RootCSSClass: facade.RootCSSClass,
			Arrays:       facade.ArrayPaths(),
			Valid:        facade.Valid(),
			Errors:       errorKeys(facade),
			Value:        facade.Value(),
			Field:        facade.Field,
		}
		if err := writeEncoded(cmd.OutOrStdout(), report, buildFormat); err != nil {
			return err
		}
		reportValidity(cmd.ErrOrStderr(), report.Valid, len(report.Errors))
		return nil
	},
}

func loadStore(dir string) (*definition.Store, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("definitions directory: %w", err)
	}
	store, err := formbuilder.LoadDefinitions(os.DirFS(dir), definition.WithLayout(cfg.Distributor()))
	if err != nil {
		return nil, err
	}
	if store.Empty() {
		return nil, fmt.Errorf("no definition files found in %s", dir)
	}
	return store, nil
}

func buildFacade(store *definition.Store, id string) (*form.Facade, error) {
	return formbuilder.BuildForm(store, id, form.WithConfig(cfg), form.WithLogger(logger))
}

func errorKeys(facade *form.Facade) map[string][]string {
	collected := render.CollectErrors(facade.Controls)
	if len(collected) == 0 {
		return nil
	}
	out := make(map[string][]string, len(collected))
	for path, errs := range collected {
		out[path] = errs.Keys()
	}
	return out
}
