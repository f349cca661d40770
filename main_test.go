package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/database"
	"grocerytracker/internal/repositories"
	"grocerytracker/internal/services"
	"grocerytracker/internal/throttle"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{DatabaseDriver: database.DriverMemory}
	userRepo, groceryRepo, db, err := openRepositories(cfg)
	require.NoError(t, err)
	assert.Nil(t, db)

	tokens := services.NewTokenManager("test_jwt_secret", "grocery-tracker", time.Hour)
	gate := throttle.NewGate(throttle.NewMemoryStore(), throttle.Config{Every: 15})
	return newApp(appServices{
		auth:      services.NewAuthService(userRepo, services.NewPasswordHasher(4), tokens, nil, time.Second),
		groceries: services.NewGroceryService(groceryRepo, nil, time.Second),
		weather:   services.NewWeatherService(services.NewOpenWeatherFetcher("http://127.0.0.1:1", "", time.Second), gate),
	})
}

func TestHealthEndpoint(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	_, err = time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestRoutesAreWired(t *testing.T) {
	app := testApp(t)

	jsonBody, _ := json.Marshal(map[string]string{"email": "wired@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groceries/registration", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/groceries/entries", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCORSAllowsTokenHeader(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/groceries/user", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-auth-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "x-auth-token")
}

func TestOpenRepositories_SQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: database.DriverSQLite,
		DatabaseDSN:    "file:main_test?mode=memory&cache=shared",
	}
	userRepo, groceryRepo, db, err := openRepositories(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
	defer database.Close(db)

	assert.IsType(t, &repositories.GORMUserRepository{}, userRepo)
	assert.IsType(t, &repositories.GORMGroceryRepository{}, groceryRepo)
}

func TestOpenRepositories_UnknownDriver(t *testing.T) {
	_, _, _, err := openRepositories(&config.Config{DatabaseDriver: "mongo"})
	assert.Error(t, err)
}
