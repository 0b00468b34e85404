package internal

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the plain-data form of a rule. It is what ToArray
// exports, what the cache stores and what definition files contain.
type Definition struct {
	Constraints map[string]string `json:"constraints,omitempty" yaml:"patterns,omitempty"`
	Target      Target            `json:"target"                yaml:"target"`
	Name        string            `json:"name,omitempty"        yaml:"name,omitempty"`
	Method      string            `json:"method"                yaml:"method,omitempty"`
	Template    string            `json:"template"              yaml:"template"`
	Domain      string            `json:"domain,omitempty"      yaml:"domain,omitempty"`
}

// Rule converts the definition into an uncompiled rule.
func (d Definition) Rule() (*Rule, error) {
	method, err := ParseMethod(d.Method)
	if err != nil {
		return nil, err
	}
	if err := d.Target.Validate(); err != nil {
		return nil, err
	}

	rule := NewRule(method, d.Template, d.Target)
	maps.Copy(rule.constraints, d.Constraints)
	rule.domain = d.Domain
	rule.name = d.Name
	return rule, nil
}

type definitionsFile struct {
	Patterns   map[string]string `yaml:"patterns"`
	RootDomain string            `yaml:"root_domain"`
	Routes     []Definition      `yaml:"routes"`
	Domains    []domainBlock     `yaml:"domains"`
}

type domainBlock struct {
	Host   string       `yaml:"host"`
	Routes []Definition `yaml:"routes"`
}

// LoadDefinitions reads a YAML route file and registers its rules.
//
//	root_domain: example.com
//	patterns:
//	  id: '\d+'
//	routes:
//	  - name: post
//	    method: GET
//	    template: blog/:id
//	    target: controller:blog/read/:id
//	domains:
//	  - host: api
//	    routes:
//	      - template: users/[:id]
//	        target: {kind: callback, value: users}
//
// Top-level routes are registered first, then each domain block in file
// order. The file's root_domain and patterns act as defaults; opts are
// applied after them.
func LoadDefinitions(r io.Reader, opts ...RouterOption) (*Router, error) {
	var file definitionsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoutes, err)
	}

	base := make([]RouterOption, 0, len(file.Patterns)+len(opts)+1)
	if file.RootDomain != "" {
		base = append(base, WithRootDomain(file.RootDomain))
	}
	for name, frag := range file.Patterns {
		base = append(base, WithGlobalPattern(name, frag))
	}
	router := NewRouter(append(base, opts...)...)

	var errs []error
	for i, def := range file.Routes {
		if err := addDefinition(router, def); err != nil {
			errs = append(errs, fmt.Errorf("routes[%d]: %w", i, err))
		}
	}
	for i, block := range file.Domains {
		if block.Host == "" {
			errs = append(errs, fmt.Errorf("domains[%d]: %w: empty host", i, ErrInvalidDomain))
			continue
		}
		router.Domain(block.Host, func(dr *Router) {
			for j, def := range block.Routes {
				if def.Domain != "" {
					errs = append(errs, fmt.Errorf("domains[%d].routes[%d]: %w: domain set inside a domain block", i, j, ErrInvalidDomain))
					continue
				}
				if err := addDefinition(dr, def); err != nil {
					errs = append(errs, fmt.Errorf("domains[%d].routes[%d]: %w", i, j, err))
				}
			}
		})
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoutes, errors.Join(errs...))
	}
	return router, nil
}

// LoadDefinitionsFile is LoadDefinitions over a file path.
func LoadDefinitionsFile(path string, opts ...RouterOption) (*Router, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route definitions: %w", err)
	}
	defer f.Close()
	return LoadDefinitions(f, opts...)
}

func addDefinition(r *Router, def Definition) error {
	method, err := ParseMethod(def.Method)
	if err != nil {
		return err
	}
	if err := def.Target.Validate(); err != nil {
		return err
	}

	add := func(r *Router) {
		rule := r.Add(method, def.Template, def.Target).Patterns(def.Constraints)
		if def.Name != "" {
			rule.As(def.Name)
		}
	}
	if def.Domain != "" {
		r.Domain(def.Domain, add)
		return nil
	}
	add(r)
	return nil
}
