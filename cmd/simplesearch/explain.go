package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nainya/simplesearch/internal/app"
	"github.com/nainya/simplesearch/internal/config"
	"github.com/nainya/simplesearch/pkg/query"
	"github.com/nainya/simplesearch/pkg/search"
)

// translatorFlags builds a translator either from a configured view or
// from fields given on the command line
type translatorFlags struct {
	view    string
	fields  []string
	dates   []string
	choices []string
	bools   []string
	exact   bool
	dialect string
}

func (f *translatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", "", "use the fields of a configured view")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "text fields searched by the free-text query")
	cmd.Flags().StringSliceVar(&f.dates, "date-fields", nil, "date fields filtered by the date bounds")
	cmd.Flags().StringSliceVar(&f.choices, "choice-fields", nil, "fields filtered by exact choices")
	cmd.Flags().StringSliceVar(&f.bools, "bool-fields", nil, "fields filtered by true/false")
	cmd.Flags().BoolVar(&f.exact, "exact", false, "match terms exactly instead of by substring")
	cmd.Flags().StringVar(&f.dialect, "dialect", query.SQLite.Name, "SQL dialect (sqlite or postgres)")
}

func (f *translatorFlags) sqlDialect() (query.Dialect, error) {
	switch f.dialect {
	case query.SQLite.Name:
		return query.SQLite, nil
	case query.Postgres.Name:
		return query.Postgres, nil
	}
	return query.Dialect{}, fmt.Errorf("unknown dialect %q", f.dialect)
}

func (f *translatorFlags) translator(ctx context.Context) (*search.Translator, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if f.view == "" {
		date, err := cfg.DateOptions()
		if err != nil {
			return nil, err
		}
		vc := config.ViewConfig{
			Fields:       f.fields,
			DateFields:   f.dates,
			ChoiceFields: f.choices,
			BoolFields:   f.bools,
			Exact:        f.exact,
		}
		return search.NewTranslator(vc.SearchConfig(date))
	}

	// only the schema is needed
	cfg.Store = config.StoreConfig{Driver: "memory"}
	a, err := app.Build(ctx, cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	for _, vc := range cfg.Views {
		if vc.Name == f.view {
			return a.Translator(vc)
		}
	}
	return nil, fmt.Errorf("unknown view %q", f.view)
}

func explainCmd() *cobra.Command {
	var (
		flags  translatorFlags
		dfrom  string
		dto    string
		params []string
	)
	cmd := &cobra.Command{
		Use:   "explain [query]",
		Short: "Print the predicate, SQL and JSON a search translates to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := flags.translator(cmd.Context())
			if err != nil {
				return err
			}
			dialect, err := flags.sqlDialect()
			if err != nil {
				return err
			}

			cfg := tr.Config()
			p := search.Params{}
			if len(args) == 1 {
				p[cfg.QueryParam] = []string{args[0]}
			}
			if dfrom != "" {
				p[cfg.DateFromParam] = []string{dfrom}
			}
			if dto != "" {
				p[cfg.DateToParam] = []string{dto}
			}
			for _, kv := range params {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --param %q, expected key=value", kv)
				}
				p[k] = append(p[k], v)
			}
			return explain(cmd.OutOrStdout(), tr, p, dialect)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&dfrom, "df", "", "lower date bound")
	cmd.Flags().StringVar(&dto, "dt", "", "upper date bound")
	cmd.Flags().StringArrayVar(&params, "param", nil, "extra key=value parameter, repeatable")
	return cmd
}

// parseParams reads a shell line: a query string when it has '=',
// otherwise the free-text query itself
func parseParams(line, queryParam string) (search.Params, error) {
	if !strings.Contains(line, "=") {
		return search.Params{queryParam: {line}}, nil
	}
	values, err := url.ParseQuery(line)
	if err != nil {
		return nil, err
	}
	return search.Params(values), nil
}

// explain writes a translation the way the explain endpoint reports it
func explain(w io.Writer, tr *search.Translator, params search.Params, dialect query.Dialect) error {
	res, err := tr.Translate(params)
	if err != nil {
		return err
	}
	where, args, err := query.ToSQL(res.Predicate, dialect)
	if err != nil {
		return err
	}
	raw, err := query.MarshalJSON(res.Predicate)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "predicate: %s\n", res.Predicate)
	fmt.Fprintf(w, "where:     %s\n", where)
	fmt.Fprintf(w, "args:      %v\n", args)
	fmt.Fprintf(w, "json:      %s\n", raw)
	if len(res.Terms) > 0 {
		fmt.Fprintf(w, "terms:     %q\n", res.Terms)
	}

	keys := make([]string, 0, len(res.Applied))
	for k := range res.Applied {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "applied:   %s=%s\n", k, res.Applied[k])
	}
	for _, issue := range res.Issues() {
		fmt.Fprintf(w, "warning:   %s (%s)\n", issue.Message(), issue.Param)
	}
	return nil
}
