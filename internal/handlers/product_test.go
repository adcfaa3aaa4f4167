package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storelane/internal/models"
)

func validProductFields(title string) map[string]string {
	return map[string]string{
		"title":       title,
		"price":       "49.99",
		"description": "a perfectly ordinary catalog item",
		"category":    "clothing",
	}
}

func TestProductListIsPublic(t *testing.T) {
	app, db := newTestApp(t)
	createProduct(t, db, "Black Shirt", 100)
	createProduct(t, db, "Blue Jeans", 80)

	resp := request(t, app, fiber.MethodGet, "/api/v1/product", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestProductShow(t *testing.T) {
	app, db := newTestApp(t)
	product := createProduct(t, db, "Black Shirt", 100)

	resp := request(t, app, fiber.MethodGet, "/api/v1/product/"+product.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Black Shirt", data["title"])

	resp = request(t, app, fiber.MethodGet, "/api/v1/product/5a0b9e5a-84cb-4a54-9b29-7e615a4b3f0f", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductCreateRequiresAgentRole(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "customer@x.com", models.RoleCustomer, true, "secret123")
	createUser(t, db, "admin@x.com", models.RoleAdmin, true, "secret123")

	for _, email := range []string{"customer@x.com", "admin@x.com"} {
		token := login(t, app, email, "secret123")
		resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", validProductFields("Black Shirt"), "shirt.png", token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", validProductFields("Black Shirt"), "shirt.png", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductCreateSlugsTitle(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	token := login(t, app, "agent@x.com", "secret123")

	resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", validProductFields("Black  Shirt"), "shirt.png", token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var product models.Product
	require.NoError(t, db.First(&product, "title = ?", "Black  Shirt").Error)
	assert.Equal(t, "Black--Shirt", product.Slug)
	assert.True(t, strings.Contains(product.Image, "Black--Shirt"))
	assert.Equal(t, 49.99, product.Price)
	assert.False(t, product.Featured)
}

func TestProductCreateValidation(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	token := login(t, app, "agent@x.com", "secret123")

	tests := []struct {
		name  string
		mut   func(map[string]string)
		image string
		field string
	}{
		{"short title", func(f map[string]string) { f["title"] = "ab" }, "p.png", "title"},
		{"zero price", func(f map[string]string) { f["price"] = "0" }, "p.png", "price"},
		{"short description", func(f map[string]string) { f["description"] = "too short" }, "p.png", "description"},
		{"short category", func(f map[string]string) { f["category"] = "ab" }, "p.png", "category"},
		{"missing image", func(f map[string]string) {}, "", "image"},
		{"bad extension", func(f map[string]string) {}, "p.exe", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validProductFields("Valid Product")
			tt.mut(fields)

			resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", fields, tt.image, token)
			require.Equal(t, http.StatusConflict, resp.StatusCode)

			body := decodeBody(t, resp)
			errs, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestProductCreateRejectsTraversalTitle(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	token := login(t, app, "agent@x.com", "secret123")

	// Slugified, this title becomes a path that climbs out of the upload dir.
	fields := validProductFields("../../escape evil")
	resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", fields, "evil.png", token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	errs, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "title")

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestProductCreateDuplicateTitle(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	createProduct(t, db, "Black Shirt", 100)
	token := login(t, app, "agent@x.com", "secret123")

	resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", validProductFields("Black Shirt"), "shirt.png", token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	errs, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "title")
}

func TestProductUpdateRecomputesSlug(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	product := createProduct(t, db, "Black Shirt", 100)
	token := login(t, app, "agent@x.com", "secret123")

	resp := multipartRequest(t, app, fiber.MethodPut, "/api/v1/product/"+product.ID.String(), validProductFields("White Hoodie"), "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, "White Hoodie", updated.Title)
	assert.Equal(t, "White-Hoodie", updated.Slug)
	assert.Equal(t, 49.99, updated.Price)
	// No upload, so the image reference is untouched.
	assert.Equal(t, product.Image, updated.Image)
}

func TestProductUpdateReplacesImage(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	token := login(t, app, "agent@x.com", "secret123")

	resp := multipartRequest(t, app, fiber.MethodPost, "/api/v1/product", validProductFields("Black Shirt"), "shirt.png", token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var product models.Product
	require.NoError(t, db.First(&product, "title = ?", "Black Shirt").Error)
	oldImage := product.Image

	resp = multipartRequest(t, app, fiber.MethodPut, "/api/v1/product/"+product.ID.String(), validProductFields("Denim Jacket"), "jacket.jpg", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&product, "id = ?", product.ID).Error)
	assert.NotEqual(t, oldImage, product.Image)
	assert.True(t, strings.HasSuffix(product.Image, "Denim-Jacket.jpg"))
}

func TestProductUpdateDuplicateTitleExcludesSelf(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	product := createProduct(t, db, "Black Shirt", 100)
	createProduct(t, db, "Blue Jeans", 80)
	token := login(t, app, "agent@x.com", "secret123")

	// Keeping its own title is fine.
	resp := multipartRequest(t, app, fiber.MethodPut, "/api/v1/product/"+product.ID.String(), validProductFields("Black Shirt"), "", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Taking another product's title is not.
	resp = multipartRequest(t, app, fiber.MethodPut, "/api/v1/product/"+product.ID.String(), validProductFields("Blue Jeans"), "", token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProductDestroy(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "agent@x.com", models.RoleAgent, true, "secret123")
	product := createProduct(t, db, "Black Shirt", 100)
	token := login(t, app, "agent@x.com", "secret123")

	resp := request(t, app, fiber.MethodDelete, "/api/v1/product/"+product.ID.String(), nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	resp = request(t, app, fiber.MethodDelete, "/api/v1/product/"+product.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
