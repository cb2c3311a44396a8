package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/nextgen-orders/pkg/httpmiddleware"
)

func newTestRouter(t *testing.T, cfg StorageConfig) (http.Handler, func(bool)) {
	t.Helper()

	lg := zaptest.NewLogger(t)
	b, err := openBackend(context.Background(), lg, cfg)
	require.NoError(t, err)
	t.Cleanup(b.close)

	h := newHealth(b)
	router, err := newRouter(lg, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider(), b, h)
	require.NoError(t, err)
	return router, h.SetReady
}

func TestRouter(t *testing.T) {
	for _, cfg := range []StorageConfig{
		{Driver: DriverMemory},
		{Driver: DriverSQLite, SQLitePath: ":memory:"},
	} {
		t.Run(cfg.Driver, func(t *testing.T) {
			router, setReady := newTestRouter(t, cfg)
			do := func(method, path, body string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
				return w
			}

			w := do(http.MethodGet, "/livez", "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get(httpmiddleware.RequestIDHeader))

			assert.Equal(t, http.StatusServiceUnavailable, do(http.MethodGet, "/readyz", "").Code)
			setReady(true)
			assert.Equal(t, http.StatusOK, do(http.MethodGet, "/readyz", "").Code)

			w = do(http.MethodPost, "/api/customers", `{"kind":"premium","taxId":"P-9","annualFee":"10","shippingDiscount":"0.2"}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			w = do(http.MethodPost, "/api/orders", `{"taxId":"P-9","items":[{"articleCode":"A","salePrice":"12.25","quantity":2}]}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"total":"24.50"`)

			w = do(http.MethodGet, "/api/orders/1/receipt", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Total: 24.50€")
		})
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	_, err := openBackend(context.Background(), zap.NewNop(), StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
