package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

var (
	fillOutput      string
	fillValues      string
	fillTemplates   []string
	fillTemplateDir string
	fillAttempts    int
)

func init() {
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "json", "output format (json, form or pretty)")
	fillCmd.Flags().StringVar(&fillValues, "values", "", "JSON or YAML file with values to prefill")
	fillCmd.Flags().StringArrayVarP(&fillTemplates, "template", "t", nil, "template binding field=source-or-file (repeatable)")
	fillCmd.Flags().StringVar(&fillTemplateDir, "template-dir", "", "directory holding template files")
	fillCmd.Flags().IntVar(&fillAttempts, "max-attempts", 0, "give up after this many invalid answers per field (0 retries forever)")
}

var fillCmd = &cobra.Command{
	Use:   "fill <definitions-dir> <form-id>",
	Short: "Fill a form interactively in the terminal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := tui.OutputFormat(strings.ToLower(fillOutput))
		switch format {
		case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
		default:
			return fmt.Errorf("unknown output format %q", fillOutput)
		}

		store, err := loadStore(args[0])
		if err != nil {
			return err
		}
		facade, err := buildFacade(store, args[1])
		if err != nil {
			return err
		}

		opts := render.RenderOptions{}
		if fillValues != "" {
			if opts.Values, err = readValues(fillValues); err != nil {
				return err
			}
		}
		if opts.Templates, err = bindTemplates(fillTemplates, fillTemplateDir); err != nil {
			return err
		}

		renderer, err := tui.New(
			tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
			tui.WithOutputFormat(format),
			tui.WithLogger(logger),
			tui.WithMaxAttempts(fillAttempts),
			tui.WithTheme(tui.Theme{SectionPrefix: "== ", ErrorPrefix: "! "}),
		)
		if err != nil {
			return err
		}

		registry := render.NewRegistry()
		if err := registry.Register(renderer); err != nil {
			return err
		}
		out, err := registry.Render(cmd.Context(), renderer.Name(), facade, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		reportValidity(cmd.ErrOrStderr(), facade.Valid(), len(render.CollectErrors(facade.Controls)))
		return nil
	},
}

func bindTemplates(pairs []string, dir string) (render.Templates, error) {
	bindings, err := parseBindings(pairs)
	if err != nil || len(bindings) == 0 {
		return nil, err
	}
	var options []template.Option
	if dir != "" {
		options = append(options, template.WithBaseDir(dir))
	}
	engine, err := template.New(options...)
	if err != nil {
		return nil, err
	}
	return engine.Bind(bindings)
}
