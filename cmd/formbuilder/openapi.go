package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

var (
	openapiHTTP    bool
	openapiTimeout time.Duration
	openapiOutput  string
)

func init() {
	openapiCmd.Flags().BoolVar(&openapiHTTP, "http", false, "allow http(s) document locations")
	openapiCmd.Flags().DurationVar(&openapiTimeout, "timeout", 30*time.Second, "timeout for remote documents")
	openapiCmd.Flags().StringVarP(&openapiOutput, "format", "f", "yaml", "output format (yaml or json)")
}

var openapiCmd = &cobra.Command{
	Use:   "openapi <document> [operation-id]",
	Short: "Convert an OpenAPI request body into a form definition",
	Long: `Reads an OpenAPI 3 document and prints a definition file for the request
body of the given operation. Without an operation id the available
operations are listed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sources []openapi.SourceOption
		if openapiHTTP {
			sources = append(sources, openapi.WithHTTPFallback(openapiTimeout))
		}
		raw, err := openapi.Read(cmd.Context(), args[0], sources...)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			ids, err := openapi.Operations(cmd.Context(), raw)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}

		file, err := openapi.Definition(cmd.Context(), raw, args[1], openapi.WithLogger(logger))
		if err != nil {
			return err
		}
		return writeEncoded(cmd.OutOrStdout(), file, openapiOutput)
	},
}
