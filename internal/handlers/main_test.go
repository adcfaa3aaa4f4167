package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/storelane/internal/config"
	"github.com/example/storelane/internal/database"
	"github.com/example/storelane/internal/handlers"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/routes"
	"github.com/example/storelane/internal/utils"
)

// newTestApp builds the full route table against an in-memory sqlite
// database and a temp-dir image store.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithLogger(t, t.TempDir(), zap.NewNop())
}

func newTestAppWithLogger(t *testing.T, uploadDir string, log *zap.Logger) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenExpires:    time.Hour,
		RememberExpires: 24 * time.Hour,
		FrontendURL:     "http://frontend.test",
		UploadDir:       uploadDir,
		UploadBaseURL:   "/images",
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	routes.Register(app, db, cfg, log)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, email, role string, active bool, password string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Telephone:    "1234567890",
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, title string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:       title,
		Slug:        utils.Slugify(title),
		Price:       price,
		Description: "a test catalog item",
		Category:    "testing",
		Image:       "/images/products/" + utils.Slugify(title) + "/original.png",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	resp := request(t, app, fiber.MethodPost, "/api/v1/login", fiber.Map{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func multipartRequest(t *testing.T, app *fiber.App, method, path string, fields map[string]string, imageName string, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if imageName != "" {
		fw, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("not-really-pixels"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(payload, &body))
	return body
}
