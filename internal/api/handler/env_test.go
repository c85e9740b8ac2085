package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/pkg/paypal"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/pkg/session"
	"github.com/qs3c/vidgen_server/internal/repository"
	"github.com/qs3c/vidgen_server/internal/service"
	"github.com/qs3c/vidgen_server/internal/testutil"
)

const (
	testCookie      = "vidgen_session"
	testPlaceholder = "https://example.com/placeholder.mp4"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	captureStatus string
	err           error
	captured      []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount float64) (*paypal.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &paypal.Order{ID: "PP-ORDER-1", Status: "CREATED"}, nil
}

func (g *fakeGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.Order, error) {
	g.captured = append(g.captured, orderID)
	if g.err != nil {
		return nil, g.err
	}
	return &paypal.Order{ID: orderID, Status: g.captureStatus}, nil
}

type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (g *fakeGenerator) Run(ctx context.Context, prompt string, duration int) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type testEnv struct {
	store     repository.Store
	sessions  *session.Store
	router    *gin.Engine
	gateway   *fakeGateway
	generator *fakeGenerator
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := testutil.SetupFileStore(t)
	sessionStore := session.NewStore(rdb, "test-secret-key", 24)
	sessions := middleware.NewSessions(sessionStore, config.SessionConfig{CookieName: testCookie})

	gateway := &fakeGateway{captureStatus: paypal.StatusCompleted}
	generator := &fakeGenerator{url: "https://replicate.delivery/out.mp4"}

	catalog := service.NewPlanCatalog(nil)
	authService := service.NewAuthService(store, nil)
	accountService := service.NewAccountService(store)
	paymentService := service.NewPaymentService(store, catalog, gateway, nil)
	generationService := service.NewGenerationService(store, catalog, accountService, generator, nil, testPlaceholder)

	authHandler := NewAuthHandler(authService, sessions)
	pageHandler := NewPageHandler(catalog, accountService, config.PayPalConfig{
		ClientID: "paypal-client-id",
		PlanIDs:  map[string]string{"basic": "P-BASIC"},
	})
	paymentHandler := NewPaymentHandler(paymentService, sessions)
	accountHandler := NewAccountHandler(accountService, sessions)
	generateHandler := NewGenerateHandler(generationService, sessions)

	router := gin.New()
	router.Use(sessions.Load())
	router.GET("/", pageHandler.Home)
	router.GET("/pricing", pageHandler.Pricing)
	router.GET("/checkout", pageHandler.Checkout)
	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.POST("/confirm-payment", paymentHandler.Confirm)
	router.POST("/paypal/create-order", paymentHandler.CreateOrder)
	router.POST("/paypal/capture-order", paymentHandler.CaptureOrder)
	router.POST("/paypal/activate", paymentHandler.Activate)
	router.GET("/account", middleware.LoadAccount(accountService, sessions, "/", ""), accountHandler.Show)
	router.POST("/cancel-membership", middleware.LoadAccount(accountService, sessions, "/", "Please login first"), accountHandler.Cancel)
	router.GET("/generate",
		middleware.LoadAccount(accountService, sessions, "/", "please login first"),
		middleware.RequirePaid("/pricing", "Upgrade to access"),
		generateHandler.Page)
	router.POST("/generate", generateHandler.Create)
	router.POST("/generate-video", generateHandler.Create)

	return &testEnv{
		store:     store,
		sessions:  sessionStore,
		router:    router,
		gateway:   gateway,
		generator: generator,
	}
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest("GET", path, nil), cookie)
}

func (e *testEnv) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookie)
}

func (e *testEnv) postJSON(path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, cookie)
}

// login 以 fixtures 默认密码登录，返回会话 cookie
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := e.postForm("/login", url.Values{"email": {email}, "password": {testutil.DefaultPassword}}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	return findCookie(t, w)
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
