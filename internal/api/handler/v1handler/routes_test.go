package v1handler_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var pathParam = regexp.MustCompile(`\{[^}]+\}`)

// openAPIOperations returns "METHOD /path" for every operation in the
// served OpenAPI document.
func openAPIOperations(t *testing.T) []string {
	t.Helper()

	b, err := os.ReadFile("../../specs/v1.yaml")
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	require.NotEmpty(t, doc.Paths)

	methods := []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
	}

	var ops []string
	for path, item := range doc.Paths {
		for _, m := range methods {
			if _, ok := item[strings.ToLower(m)]; ok {
				ops = append(ops, m+" "+path)
			}
		}
	}

	return ops
}

func TestRegister_MatchesOpenAPIDocument(t *testing.T) {
	f := newAPIFixture(t)

	ops := openAPIOperations(t)
	require.Len(t, ops, 5)

	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			method, path, _ := strings.Cut(op, " ")
			target := pathParam.ReplaceAllString(path, uuid.NewString())

			_, pattern := f.mux.Handler(httptest.NewRequest(method, target, nil))
			require.Equal(t, op, pattern)
		})
	}
}
