package internal_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/internal"
)

const routesYAML = `
root_domain: example.com
patterns:
  id: '\d+'
routes:
  - name: home
    method: GET
    template: /
    target: view:home
  - name: post
    template: blog/:id/[:slug]
    target: controller:blog/read/:id
  - method: GET|POST
    template: tags/:tag
    target: tags/show/:tag
    patterns:
      tag: '[a-z]+'
  - template: status
    domain: ops
    target: callback:status
domains:
  - host: api
    routes:
      - template: users/<id?>
        target:
          kind: callback
          value: users
  - host: "*.example.com"
    routes:
      - template: ""
        target: redirect:https://example.com/
`

func TestLoadDefinitions(t *testing.T) {
	t.Parallel()

	r, err := internal.LoadDefinitions(strings.NewReader(routesYAML))
	require.NoError(t, err)
	require.Equal(t, "example.com", r.RootDomain())

	defs := r.ToArray()
	require.Len(t, defs, 6)
	require.Equal(t, internal.Definition{
		Name:        "post",
		Method:      "ANY",
		Template:    "blog/:id/[:slug]",
		Target:      internal.Controller("blog/read/:id"),
		Constraints: map[string]string{"id": `\d+`},
	}, defs[1])
	require.Equal(t, map[string]string{"id": `\d+`, "tag": "[a-z]+"}, defs[2].Constraints)
	require.Equal(t, "GET|POST", defs[2].Method)
	require.Equal(t, "ops", defs[3].Domain)
	require.Equal(t, "api", defs[4].Domain)
	require.Equal(t, "*.example.com", defs[5].Domain)

	m, err := r.Build()
	require.NoError(t, err)

	res, err := m.Resolve(get("/blog/12", "example.com"))
	require.NoError(t, err)
	require.Equal(t, "blog/read/12", res.Action)

	_, err = m.Resolve(get("/blog/abc", "example.com"))
	require.ErrorIs(t, err, internal.ErrNotFound)

	res, err = m.Resolve(get("/users", "api.example.com"))
	require.NoError(t, err)
	require.Equal(t, internal.KindCallback, res.Kind)

	res, err = m.Resolve(get("/status", "ops.example.com"))
	require.NoError(t, err)
	require.Equal(t, "status", res.Action)

	res, err = m.Resolve(get("/", "www.example.com"))
	require.NoError(t, err)
	require.Equal(t, internal.KindRedirect, res.Kind)

	url, err := m.URL("post", map[string]string{"id": "5", "slug": "hi"})
	require.NoError(t, err)
	require.Equal(t, "/blog/5/hi", url)
}

func TestLoadDefinitions_OptionsOverrideFile(t *testing.T) {
	t.Parallel()

	r, err := internal.LoadDefinitions(strings.NewReader(routesYAML), internal.WithRootDomain("example.net"))
	require.NoError(t, err)
	require.Equal(t, "example.net", r.RootDomain())

	m := r.MustBuild()
	require.True(t, m.Check(get("/users/1", "api.example.net")).Matched)
}

func TestLoadDefinitions_Empty(t *testing.T) {
	t.Parallel()

	r, err := internal.LoadDefinitions(strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, r.Len())
}

func TestLoadDefinitions_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown field",
			yaml: "routes:\n  - template: a\n    target: view:a\n    handler: x\n",
			want: internal.ErrInvalidRoutes,
		},
		{
			name: "bad method",
			yaml: "routes:\n  - template: a\n    method: FETCH\n    target: view:a\n",
			want: internal.ErrInvalidMethod,
		},
		{
			name: "missing target",
			yaml: "routes:\n  - template: a\n",
			want: internal.ErrInvalidTarget,
		},
		{
			name: "domain without host",
			yaml: "domains:\n  - routes:\n      - template: a\n        target: view:a\n",
			want: internal.ErrInvalidDomain,
		},
		{
			name: "nested domain",
			yaml: "domains:\n  - host: api\n    routes:\n      - template: a\n        domain: www\n        target: view:a\n",
			want: internal.ErrInvalidDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := internal.LoadDefinitions(strings.NewReader(tt.yaml))
			require.ErrorIs(t, err, internal.ErrInvalidRoutes)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadDefinitionsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(routesYAML), 0o600))

	r, err := internal.LoadDefinitionsFile(path)
	require.NoError(t, err)
	require.Equal(t, 6, r.Len())

	_, err = internal.LoadDefinitionsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
