package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/handler"
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	"github.com/Payphone-Digital/bizsite/internal/service"
	"github.com/Payphone-Digital/bizsite/internal/testutil"
	"github.com/Payphone-Digital/bizsite/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	sender *testutil.RecordingSender
}

func newTestServer(t *testing.T, limiters Limiters) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	sender := &testutil.RecordingSender{}
	cfg := &config.Config{
		App: config.AppConfig{FrontendURL: "http://localhost:3000", Timeout: 5 * time.Second},
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    time.Hour,
			CookieName:    "accessToken",
		},
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenIssuer(service.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	authService := service.NewAuthService(userRepo, tokens, hasher, nil)

	handlers := Handlers{
		Auth:     handler.NewAuthHandler(authService, service.NewPasswordResetService(userRepo, hasher, sender, nil), cfg.JWT),
		User:     handler.NewUserHandler(service.NewUserService(userRepo, hasher)),
		Content:  handler.NewContentHandler(service.NewContentService(repository.NewContentRepository(db))),
		Product:  handler.NewProductHandler(service.NewProductService(productRepo)),
		Enquiry:  handler.NewEnquiryHandler(service.NewEnquiryService(repository.NewEnquiryRepository(db), productRepo)),
		Wishlist: handler.NewWishlistHandler(service.NewWishlistService(repository.NewWishlistRepository(db), productRepo)),
		Health:   handler.NewHealthHandler(db, nil),
	}
	authMw := middleware.NewAuthMiddleware(authService, middleware.DefaultExtractor(cfg.JWT.CookieName), nil)

	return &testServer{
		t:      t,
		engine: NewRouter(handlers, authMw, limiters, nil, cfg).SetupRoutes(),
		db:     db,
		sender: sender,
	}
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) JSON(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &body), "body: %s", r.Body.String())
	return body
}

func (s *testServer) do(method, path, token string, body any) response {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return response{w}
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, res.Code, res.Body.String())
	return res.JSON(s.t)["accessToken"].(string)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, Limiters{})

	res := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.NotContains(t, res.Body.String(), "accessToken")

	res = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "username", res.JSON(t)["field"])

	res = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "bob", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	body := res.JSON(t)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "email", body["field"])

	res = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Code)
	login := res.JSON(t)
	user := login["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, res.Body.String(), "password")

	cookie := res.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "accessToken=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")

	res = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "invalid password", res.JSON(t)["message"])

	res = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": login["refreshToken"].(string)})
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.JSON(t)["accessToken"])

	res = s.do(http.MethodPost, "/api/v1/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", res.JSON(t)["code"])

	res = s.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestSessionCookieAuthenticates(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)
	token := s.login("alice@example.com", "secret1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	res := s.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestProfileUpdateIgnoresPrivilegedFields(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)
	token := s.login("alice@example.com", "secret1")

	res := s.do(http.MethodPut, "/api/v1/users/me", token, map[string]any{
		"firstName": "Alice",
		"role":      "admin",
		"email":     "root@example.com",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	body := res.JSON(t)
	assert.Equal(t, "Alice", body["firstName"])
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "alice@example.com", body["email"])
}

func TestAccessMatrix(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "admin", "admin@example.com", "secret1", model.RoleAdmin)
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)
	admin := s.login("admin@example.com", "secret1")
	alice := s.login("alice@example.com", "secret1")

	tests := []struct {
		method string
		path   string
		token  string
		status int
	}{
		{http.MethodGet, "/api/v1/users", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users", alice, http.StatusForbidden},
		{http.MethodGet, "/api/v1/users", admin, http.StatusOK},
		{http.MethodGet, "/api/v1/admin/contents", alice, http.StatusForbidden},
		{http.MethodGet, "/api/v1/admin/contents", admin, http.StatusOK},
		{http.MethodGet, "/api/v1/enquiries", alice, http.StatusForbidden},
		{http.MethodGet, "/api/v1/enquiries", admin, http.StatusOK},
		{http.MethodGet, "/api/v1/enquiries/mine", alice, http.StatusOK},
		{http.MethodGet, "/api/v1/wishlist", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/wishlist", alice, http.StatusOK},
		{http.MethodGet, "/api/v1/contents", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		who := "anonymous"
		switch tt.token {
		case admin:
			who = "admin"
		case alice:
			who = "user"
		}
		t.Run(fmt.Sprintf("%s %s as %s", tt.method, tt.path, who), func(t *testing.T) {
			res := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, res.Code, res.Body.String())
		})
	}
}

func TestContentPublishing(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "admin", "admin@example.com", "secret1", model.RoleAdmin)
	admin := s.login("admin@example.com", "secret1")

	res := s.do(http.MethodPost, "/api/v1/admin/contents", admin, map[string]any{"title": "Draft idea", "type": "blog"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	draftID := res.JSON(t)["id"].(float64)

	res = s.do(http.MethodPost, "/api/v1/admin/contents", admin, map[string]any{
		"title": "Shipped", "type": "case-study", "status": "published", "tags": []string{"Retail"},
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = s.do(http.MethodPost, "/api/v1/admin/contents", admin, map[string]any{"title": "Bad", "type": "podcast"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = s.do(http.MethodGet, "/api/v1/contents", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	list := res.JSON(t)
	assert.Equal(t, float64(1), list["total"])

	res = s.do(http.MethodGet, "/api/v1/contents?tag=retail", "", nil)
	assert.Equal(t, float64(1), res.JSON(t)["total"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/contents/draft-idea", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/contents/shipped", "", nil).Code)

	res = s.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/contents/%d", int(draftID)), admin, map[string]any{
		"title": "Draft idea", "type": "blog", "status": "published",
	})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/contents/draft-idea", "", nil).Code)

	res = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/contents/%d", int(draftID)), admin, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/contents/draft-idea", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/admin/contents/abc", admin, nil).Code)
}

func TestEnquiryOwnership(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "admin", "admin@example.com", "secret1", model.RoleAdmin)
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)
	testutil.CreateUser(t, s.db, "bob", "bob@example.com", "secret1", model.RoleUser)
	admin := s.login("admin@example.com", "secret1")
	alice := s.login("alice@example.com", "secret1")
	bob := s.login("bob@example.com", "secret1")

	form := map[string]any{"name": "Alice", "email": "alice@example.com", "message": "Need a quote"}

	res := s.do(http.MethodPost, "/api/v1/enquiries", "", form)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Nil(t, res.JSON(t)["userId"])

	// A broken token on the public form is ignored rather than rejected.
	res = s.do(http.MethodPost, "/api/v1/enquiries", "garbage", form)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Nil(t, res.JSON(t)["userId"])

	res = s.do(http.MethodPost, "/api/v1/enquiries", alice, form)
	require.Equal(t, http.StatusCreated, res.Code)
	owned := res.JSON(t)
	require.NotNil(t, owned["userId"])
	path := fmt.Sprintf("/api/v1/enquiries/%d", int(owned["id"].(float64)))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, alice, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, bob, nil).Code)

	res = s.do(http.MethodGet, "/api/v1/enquiries/mine", alice, nil)
	assert.Equal(t, float64(1), res.JSON(t)["total"])
	res = s.do(http.MethodGet, "/api/v1/enquiries/mine", bob, nil)
	assert.Equal(t, float64(0), res.JSON(t)["total"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path, alice, map[string]any{"status": "closed"}).Code)

	res = s.do(http.MethodPatch, path, admin, map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "in_progress", res.JSON(t)["status"])

	res = s.do(http.MethodGet, "/api/v1/enquiries?status=in_progress", admin, nil)
	assert.Equal(t, float64(1), res.JSON(t)["total"])
}

func TestWishlist(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)
	alice := s.login("alice@example.com", "secret1")
	product := testutil.CreateProduct(t, s.db, "Managed Hosting", "managed-hosting", true)
	item := fmt.Sprintf("/api/v1/wishlist/%d", product.ID)

	res := s.do(http.MethodPost, "/api/v1/wishlist", alice, map[string]any{"productId": product.ID})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = s.do(http.MethodPost, "/api/v1/wishlist", alice, map[string]any{"productId": product.ID})
	assert.Equal(t, http.StatusConflict, res.Code)

	res = s.do(http.MethodPost, "/api/v1/wishlist", alice, map[string]any{"productId": 9999})
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = s.do(http.MethodGet, "/api/v1/wishlist", alice, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.JSON(t)["data"], 1)

	res = s.do(http.MethodGet, item, alice, nil)
	assert.Equal(t, true, res.JSON(t)["inWishlist"])

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, item, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, item, alice, nil).Code)

	res = s.do(http.MethodGet, item, alice, nil)
	assert.Equal(t, false, res.JSON(t)["inWishlist"])
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, Limiters{})
	testutil.CreateUser(t, s.db, "alice", "alice@example.com", "secret1", model.RoleUser)

	res := s.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, res.Code)
	known := res.JSON(t)["message"]

	res = s.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, known, res.JSON(t)["message"])

	token := s.sender.LastToken()
	require.NotEmpty(t, token)

	res = s.do(http.MethodGet, "/api/v1/auth/reset-password/"+token, "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.JSON(t)["valid"])

	res = s.do(http.MethodGet, "/api/v1/auth/reset-password?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = s.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{"token": token, "newPassword": "brand-new"})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, true, res.JSON(t)["success"])

	res = s.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{"token": token, "newPassword": "again-new"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "RESET_TOKEN_INVALID", res.JSON(t)["code"])

	s.login("alice@example.com", "brand-new")
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, Limiters{Auth: ratelimit.NewMemoryLimiter(2, time.Minute)})

	creds := map[string]string{"email": "x@example.com", "password": "nope"}
	for i := 0; i < 2; i++ {
		res := s.do(http.MethodPost, "/api/v1/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	}

	res := s.do(http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.NotEmpty(t, res.Header().Get("Retry-After"))

	// Other route groups are not counted against the auth limiter.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/products", "", nil).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, Limiters{})

	res := s.do(http.MethodGet, "/api/health", "", nil)
	assert.True(t, strings.Count(res.Header().Get("X-Request-ID"), "-") == 4)
}
