package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pathway"
)

func routesCmd(cfg *config) *cobra.Command {
	var (
		asJSON      bool
		expressions bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List rules in evaluation order",
		Long: `List every rule in the order it is evaluated, with its method set,
template, domain scope, name and target.

Examples:
  pathway routes --routes routes.yaml
  pathway routes --cache redis://localhost:6379/0 --expressions
  pathway routes --routes routes.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := cfg.loadRouter(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := r.Build(); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r.ToArray())
			}

			w := colorprofile.NewWriter(cmd.OutOrStdout(), os.Environ())
			if noColor {
				w.Profile = colorprofile.NoTTY
			}
			renderRoutes(w, r.Rules(), expressions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print definitions as JSON")
	cmd.Flags().BoolVarP(&expressions, "expressions", "e", false, "Include compiled expressions")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}

var methodStyles = map[string]lipgloss.Style{
	"GET":    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	"POST":   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	"PUT":    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	"DELETE": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	"PATCH":  lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	"ANY":    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
}

// renderRoutes writes the rules as a table. Colors are downsampled or
// stripped by the colorprofile writer.
func renderRoutes(w io.Writer, rules []*pathway.Rule, expressions bool) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "no routes")
		return
	}

	headers := []string{"#", "Method", "Template", "Domain", "Name", "Target"}
	if expressions {
		headers = append(headers, "Expression")
	}

	rows := make([][]string, 0, len(rules))
	for i, rule := range rules {
		method := rule.Method().String()
		if style, ok := methodStyles[method]; ok {
			method = style.Render(method)
		}
		row := []string{
			strconv.Itoa(i),
			method,
			"/" + strings.TrimPrefix(rule.Template(), "/"),
			dash(rule.Domain()),
			dash(rule.Name()),
			rule.Target().String(),
		}
		if expressions {
			expr, _ := rule.Compile()
			row = append(row, expr.String())
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				style = style.Bold(true)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
