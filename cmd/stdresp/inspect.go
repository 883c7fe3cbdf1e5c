package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/stdresp/query"
)

type inspection struct {
	Pagination query.Pagination `json:"pagination" yaml:"pagination"`
	Sorting    query.Sorting    `json:"sorting" yaml:"sorting"`
	Filtering  query.Filtering  `json:"filtering" yaml:"filtering"`
}

type operatorInfo struct {
	Operator    query.Operator `json:"operator" yaml:"operator"`
	Description string         `json:"description" yaml:"description"`
}

func newInspectCmd() *cobra.Command {
	var (
		rawQuery   string
		sortable   []string
		filterable []string
		bounds     query.PaginationBounds
		output     string
		operators  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse a query string the way a standard route would",
		Example: `  stdresp inspect --query 'limit=5&offset=10'
  stdresp inspect --query 'sort=-year,title&filter=year>=1900;genre==scifi,genre==classic' --output json
  stdresp inspect --operators`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "yaml" && output != "json" {
				return fmt.Errorf("unknown output format %q (want yaml or json)", output)
			}

			if operators {
				var ops []operatorInfo
				for _, op := range query.Operators() {
					ops = append(ops, operatorInfo{Operator: op, Description: op.Description()})
				}
				return write(cmd.OutOrStdout(), output, ops)
			}

			// Unset flags accept any field.
			if !cmd.Flags().Changed("sortable") {
				sortable = nil
			}
			if !cmd.Flags().Changed("filterable") {
				filterable = nil
			}

			res, err := inspect(rawQuery, bounds, sortable, filterable)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), output, res)
		},
	}

	cmd.Flags().StringVarP(&rawQuery, "query", "q", "", "Query string, e.g. 'limit=5&sort=-year'")
	cmd.Flags().StringSliceVar(&sortable, "sortable", nil, "Fields that may be sorted on (default any)")
	cmd.Flags().StringSliceVar(&filterable, "filterable", nil, "Fields that may be filtered on (default any)")
	cmd.Flags().IntVar(&bounds.MinLimit, "min-limit", 1, "Smallest accepted limit")
	cmd.Flags().IntVar(&bounds.MaxLimit, "max-limit", 0, "Largest accepted limit (0 for none)")
	cmd.Flags().IntVar(&bounds.DefaultLimit, "default-limit", query.FallbackLimit, "Limit used when none is given")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (yaml, json)")
	cmd.Flags().BoolVar(&operators, "operators", false, "List the supported filter operators")

	return cmd
}

func inspect(rawQuery string, bounds query.PaginationBounds, sortable, filterable []string) (inspection, error) {
	values, err := query.Values(rawQuery)
	if err != nil {
		return inspection{}, fmt.Errorf("parse query: %w", err)
	}

	var res inspection
	if res.Pagination, err = query.ParsePagination(values, bounds); err != nil {
		return inspection{}, err
	}
	if res.Sorting, err = query.ParseSorting(values.Get(query.SortParam), sortable); err != nil {
		return inspection{}, err
	}
	if res.Filtering, err = query.ParseFiltering(values.Get(query.FilterParam), filterable); err != nil {
		return inspection{}, err
	}
	return res, nil
}

func write(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
