package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pathway"
)

// matchOutput is the JSON printed by the match command.
type matchOutput struct {
	Params         map[string]string `json:"params,omitempty"`
	Rule           string            `json:"rule,omitempty"`
	Name           string            `json:"name,omitempty"`
	Kind           string            `json:"kind,omitempty"`
	Action         string            `json:"action,omitempty"`
	Allowed        []string          `json:"allowed,omitempty"`
	Matched        bool              `json:"matched"`
	MethodMismatch bool              `json:"method_mismatch,omitempty"`
}

func matchCmd(cfg *config) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "match METHOD URL",
		Short: "Resolve a URL against the route table",
		Long: `Resolve METHOD and URL to the first rule that accepts them and print the
resolution as JSON. The host is taken from an absolute URL or from --host.
The command exits non-zero when nothing matches.

Examples:
  pathway match GET /blog/42 --routes routes.yaml
  pathway match POST https://api.example.com/users --routes routes.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseMatchRequest(args[0], args[1], host)
			if err != nil {
				return err
			}

			r, err := cfg.loadRouter(cmd.Context())
			if err != nil {
				return err
			}
			m, err := r.Build()
			if err != nil {
				return err
			}

			res := m.Check(req)
			out := matchOutput{Matched: res.Matched, MethodMismatch: res.MethodMismatch}
			if resolution, ok := res.Resolution(); ok {
				out.Rule = res.Rule.String()
				out.Name = res.Rule.Name()
				out.Params = resolution.Params
				out.Kind = string(resolution.Kind)
				out.Action = resolution.Action
			}
			if res.MethodMismatch {
				out.Allowed = m.Allowed(req).Names()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}

			if _, err := m.Resolve(req); err != nil {
				cfg.log.DebugContext(cmd.Context(), "no match", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Request host when URL is a path")

	return cmd
}

func parseMatchRequest(method, rawURL, host string) (pathway.Request, error) {
	if _, err := pathway.ParseMethod(method); err != nil {
		return pathway.Request{}, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return pathway.Request{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Host != "" && host == "" {
		host = u.Host
	}
	return pathway.Request{
		Method: strings.ToUpper(method),
		Path:   u.Path,
		Host:   host,
	}, nil
}
