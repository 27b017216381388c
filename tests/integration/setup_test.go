package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quantifi/internal/cache"
	"quantifi/internal/gemini"
	"quantifi/internal/handlers"
	"quantifi/internal/logger"
	"quantifi/internal/middleware"
	"quantifi/internal/models"
	"quantifi/internal/services"
	"quantifi/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Generator *scriptedGenerator
}

// scriptedGenerator stands in for the Gemini gateway in integration tests.
type scriptedGenerator struct {
	response string
	err      error
	calls    int
}

func (g *scriptedGenerator) GenerateText(context.Context, string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	return setupAppWithGenerator(t, &scriptedGenerator{err: gemini.ErrNotConfigured})
}

func setupAppWithGenerator(t *testing.T, gen *scriptedGenerator) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	provider := func(context.Context) (services.TextGenerator, error) {
		if gen.err == gemini.ErrNotConfigured {
			return nil, gemini.ErrNotConfigured
		}
		return gen, nil
	}

	// Services
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	dashboardService := services.NewDashboardService(db)
	advisorService := services.NewAdvisorService(db, cache.NewInsightCache(nil), cache.NewCategoryCache(), provider)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	uploadHandler := handlers.NewUploadHandler(t.TempDir())
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	advisorHandler := handlers.NewAdvisorHandler(advisorService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/me", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)
	protected.POST("/auth/upload-image", uploadHandler.Image)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.Create)
	transactions.GET("", transactionHandler.List)
	transactions.GET("/:id", transactionHandler.Get)
	transactions.PUT("/:id", transactionHandler.Update)
	transactions.DELETE("/:id", transactionHandler.Delete)
	transactions.GET("/export/:type", transactionHandler.Export)

	protected.GET("/dashboard", dashboardHandler.Get)

	ai := protected.Group("/ai")
	ai.GET("/insights", advisorHandler.GetInsights)
	ai.POST("/chat", advisorHandler.Chat)
	ai.POST("/suggest-category", advisorHandler.SuggestCategory)

	return &testApp{DB: db, Router: router, Generator: gen}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}

// addTransaction creates a transaction and returns its ID.
func (app *testApp) addTransaction(t *testing.T, token, txType, category string, amount float64) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"amount":%v,"category":%q}`, txType, amount, category)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	tx := result["transaction"].(map[string]interface{})
	return tx["id"].(float64)
}
