package api_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"detector/internal/api"
	"detector/internal/api/handler/v1handler"
	"detector/pkg/serrors"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func publicKeyPEM(t *testing.T) string {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub}))
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "detector_test_total"}))

	h, err := api.NewHandler(api.Deps{Gatherer: reg}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: publicKeyPEM(t)},
		MetricsPath:       "/metrics",
		AllowedOrigins:    []string{"*"},
		MaxBodyBytes:      1024,
	})
	require.NoError(t, err)

	return h
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(body)
}

func TestNewHandler_Routes(t *testing.T) {
	h := newTestHandler(t)

	res, body := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)
	require.NotEmpty(t, res.Header.Get("X-Request-Id"))

	res, body = get(t, h, "/specs/v1.yaml")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/yaml", res.Header.Get("Content-Type"))
	require.Contains(t, body, "/v1/history/export")

	res, body = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "detector_test_total")

	res, _ = get(t, h, "/v1/docs/")
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = get(t, h, "/v1/items")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewHandler_MissingPublicKey(t *testing.T) {
	_, err := api.NewHandler(api.Deps{}, api.Options{SecHandlerOptions: &v1handler.SecHandlerOptions{}})
	require.ErrorIs(t, err, serrors.ErrConfiguration)
}
