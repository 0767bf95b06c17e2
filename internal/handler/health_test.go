package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Payphone-Digital/bizsite/internal/testutil"
	bizredis "github.com/Payphone-Digital/bizsite/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthCheck(t *testing.T, h *HealthHandler) (int, HealthCheckResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health", h.HealthCheck)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthCheck(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	tests := []struct {
		name       string
		handler    *HealthHandler
		stopRedis  bool
		wantStatus int
		wantRedis  string
	}{
		{"redis disabled", NewHealthHandler(db, nil), false, http.StatusOK, statusDisabled},
		{"redis healthy", NewHealthHandler(db, bizredis.NewFromRedis(rdb)), false, http.StatusOK, statusHealthy},
		{"redis down stays healthy", NewHealthHandler(db, bizredis.NewFromRedis(rdb)), true, http.StatusOK, statusUnhealthy},
		{"no database", NewHealthHandler(nil, nil), false, http.StatusServiceUnavailable, statusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.stopRedis {
				mr.Close()
			}

			code, body := healthCheck(t, tt.handler)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantRedis, body.Checks["redis"].Status)
		})
	}
}
