//go:build integration

package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"
)

// Response types are local to keep the test black-box.

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lineItemResponse struct {
	ArticleCode string `json:"articleCode"`
	SalePrice   string `json:"salePrice"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type orderResponse struct {
	Number int64              `json:"number"`
	Status string             `json:"status"`
	Items  []lineItemResponse `json:"items"`
	Total  string             `json:"total"`
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("nextgen"),
		tcpostgres.WithUsername("nextgen"),
		tcpostgres.WithPassword("nextgen"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	lg := zaptest.NewLogger(t)
	b, err := openBackend(ctx, lg, StorageConfig{Driver: DriverPostgres, DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(b.close)

	h := newHealth(b)
	h.Start(ctx, time.Second)
	t.Cleanup(h.Stop)
	h.SetReady(true)

	router, err := newRouter(lg, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider(), b, h)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestPostgresEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	srv := startServer(t)

	code, _ := call(t, srv, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, srv, http.MethodPost, "/api/customers",
		`{"kind":"premium","name":"Ada","taxId":"GB-1","annualFee":"120","shippingDiscount":"0.15"}`)
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = call(t, srv, http.MethodPost, "/api/customers", `{"kind":"standard","taxId":"GB-1"}`)
	require.Equal(t, http.StatusConflict, code)
	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, http.StatusConflict, errResp.Code)

	code, body = call(t, srv, http.MethodPost, "/api/orders", `{
		"taxId": "GB-1",
		"items": [
			{"articleCode": "A-1", "salePrice": "10.50", "quantity": 2},
			{"articleCode": "B-2", "salePrice": "4.50", "quantity": 1}
		]
	}`)
	require.Equal(t, http.StatusCreated, code, string(body))
	var placed orderResponse
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.Equal(t, "PENDING", placed.Status)
	assert.Equal(t, "25.50", placed.Total)
	require.Len(t, placed.Items, 2)
	orderPath := "/api/orders/" + strconv.FormatInt(placed.Number, 10)

	code, body = call(t, srv, http.MethodGet, orderPath+"/receipt", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "Total: 25.50€")

	code, body = call(t, srv, http.MethodPost, orderPath+"/ship", "")
	require.Equal(t, http.StatusOK, code, string(body))
	var shipped orderResponse
	require.NoError(t, json.Unmarshal(body, &shipped))
	assert.Equal(t, "SHIPPED", shipped.Status)

	code, _ = call(t, srv, http.MethodPost, orderPath+"/ship", "")
	assert.Equal(t, http.StatusConflict, code)
}
