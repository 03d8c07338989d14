//go:build integration

package router_test

// Full billing cycle against real Postgres and Redis.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance/internal/config"
	"attendance/internal/infra"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/router"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const testSecret = "integration-secret"

// ── Helpers ──────────────────────────────────────────────────────────────────

func sign(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Email:  "it@example.com",
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type env struct {
	srv   *httptest.Server
	db    *gorm.DB
	token string
}

func (e *env) do(t *testing.T, method, path string, body any, dest any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("attendance_test"),
		tcPostgres.WithUsername("attendance"),
		tcPostgres.WithPassword("attendance"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          testSecret,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		RateCacheTTL:       time.Minute,
		RateLimitPerMinute: 10000,
		SMTPFrom:           "billing@example.com",
		CompanyName:        "Acme Staffing",
		PDFStoragePath:     t.TempDir(),
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, 5)
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(cfg, db, rdb, router.Deps{}))
	t.Cleanup(srv.Close)

	e := &env{srv: srv, db: db, token: sign(t, uuid.NewString(), model.RoleAdministrator)}

	// Bootstrap an administrator so created_by references resolve.
	var admin struct {
		ID string `json:"id"`
	}
	code := e.do(t, http.MethodPost, "/v1/users", map[string]any{
		"first_name": "Ada", "last_name": "Admin", "email": "ada@example.com",
		"roles": []string{model.RoleAdministrator, model.RoleManager},
	}, &admin)
	require.Equal(t, http.StatusCreated, code)
	e.token = sign(t, admin.ID, model.RoleAdministrator, model.RoleManager)
	return e
}

type idNumber struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestBillingCycle(t *testing.T) {
	e := setup(t)
	year := time.Now().UTC().Year()

	var client struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/v1/users", map[string]any{
		"first_name": "Carla", "last_name": "Client", "email": "carla@example.com",
		"roles": []string{model.RoleClient},
	}, &client))

	var order struct {
		idNumber
		OrderNumber string `json:"order_number"`
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/v1/job-orders", map[string]any{
		"client_id": client.ID, "event_name": "Spring Fair", "site_name": "Hall A",
		"site_address": "1 Main St", "start_date": time.Now().UTC().Format(time.RFC3339),
		"end_date": time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339), "estimated_hours": "40",
	}, &order))
	assert.Equal(t, fmt.Sprintf("JO%d-0001", year), order.OrderNumber)

	var quote struct {
		idNumber
		QuoteNumber string `json:"quote_number"`
		Amount      string `json:"amount"`
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/v1/quotes", map[string]any{"job_order_id": order.ID}, &quote))
	assert.Equal(t, fmt.Sprintf("Q%d-0001", year), quote.QuoteNumber)

	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, fmt.Sprintf("/v1/quotes/%d/line-items", quote.ID), map[string]any{
		"description": "Stagehands", "quantity": "20", "unit_price": "50", "cost": "30",
	}, &quote))
	assert.Equal(t, "1000", quote.Amount)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, fmt.Sprintf("/v1/quotes/%d/status", quote.ID),
		map[string]any{"status": "Approved"}, &quote))
	assert.Equal(t, "Approved", quote.Status)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, fmt.Sprintf("/v1/job-orders/%d", order.ID), nil, &order))
	assert.Equal(t, "Approved", order.Status)

	var job idNumber
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, fmt.Sprintf("/v1/jobs/from-order/%d", order.ID), nil, &job))

	// A second job for the same order is refused.
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, fmt.Sprintf("/v1/jobs/from-order/%d", order.ID), nil, nil))

	var entry idNumber
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/v1/timeentry/clock-in", map[string]any{"job_id": job.ID}, &entry))
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/v1/timeentry/clock-in", map[string]any{}, nil))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/v1/timeentry/clock-out", map[string]any{"time_entry_id": entry.ID}, &entry))
	assert.Equal(t, "Completed", entry.Status)

	for _, status := range []string{"InProgress", "Completed"} {
		require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, fmt.Sprintf("/v1/jobs/%d/status", job.ID),
			map[string]any{"status": status}, &job))
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, fmt.Sprintf("/v1/job-orders/%d", order.ID), nil, &order))
	assert.Equal(t, "Completed", order.Status)

	var inv struct {
		idNumber
		InvoiceNumber string `json:"invoice_number"`
		TotalAmount   string `json:"total_amount"`
	}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/v1/invoices/from-quote", map[string]any{"quote_id": quote.ID}, &inv))
	assert.Equal(t, fmt.Sprintf("INV%d-0001", year), inv.InvoiceNumber)
	assert.Equal(t, "1000", inv.TotalAmount)

	first := inv.ID
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/v1/invoices/from-quote", map[string]any{"quote_id": quote.ID}, &inv))
	assert.Equal(t, first, inv.ID)

	var counter model.DocumentCounter
	require.NoError(t, e.db.Where("prefix = ? AND year = ?", "INV", year).First(&counter).Error)
	assert.Equal(t, 1, counter.Value)
}

func TestHealth(t *testing.T) {
	e := setup(t)
	resp, err := e.srv.Client().Get(e.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
