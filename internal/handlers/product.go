package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/services"
	"github.com/example/storelane/internal/utils"
)

// maxImageSize caps product and avatar uploads at 2MB.
const maxImageSize = 2 << 20

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".svg":  true,
}

// ProductHandler manages the product catalog.
type ProductHandler struct {
	db     *gorm.DB
	images services.ImageStore
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(db *gorm.DB, images services.ImageStore) *ProductHandler {
	return &ProductHandler{db: db, images: images}
}

// List returns the full catalog. The public listing is intentionally
// unpaginated.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Order("created_at desc").Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
	})
}

// Show returns a single product.
func (h *ProductHandler) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

type productRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,min=3"`
	Price       float64 `json:"price" form:"price" validate:"required,gt=0"`
	Description string  `json:"description" form:"description" validate:"required,min=10"`
	Category    string  `json:"category" form:"category" validate:"required,min=3"`
	Featured    bool    `json:"featured" form:"featured"`
}

// Create stores a new product. Requires the agent role (gated in routes).
// The image is mandatory and lands under a per-slug folder.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var count int64
	if err := h.db.Model(&models.Product{}).Where("title = ?", req.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationError(c, map[string]string{"title": "The title has already been taken"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return validationError(c, map[string]string{"image": "This field is required"})
	}

	data, ext, errs := readImageUpload(file)
	if errs != nil {
		return validationError(c, errs)
	}

	slug := utils.Slugify(req.Title)
	imageURL, err := h.images.Save("products/"+slug, slug+ext, data)
	if err != nil {
		if errors.Is(err, services.ErrUnsafePath) {
			return validationError(c, map[string]string{"title": "The title contains invalid path characters"})
		}
		return err
	}

	product := models.Product{
		Title:       req.Title,
		Slug:        slug,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Image:       imageURL,
		Featured:    req.Featured,
	}
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    product,
		"message": "The " + product.Title + " was created successfully",
	})
}

// Update edits a product, recomputing the slug from the possibly changed
// title. A supplied image replaces the stored one atomically: the new file
// is written before the old one is removed, and an upload failure leaves
// the old image referenced.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var count int64
	if err := h.db.Model(&models.Product{}).
		Where("title = ? AND id <> ?", req.Title, product.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationError(c, map[string]string{"title": "The title has already been taken"})
	}

	slug := utils.Slugify(req.Title)

	if file, err := c.FormFile("image"); err == nil {
		data, ext, errs := readImageUpload(file)
		if errs != nil {
			return validationError(c, errs)
		}

		imageURL, err := h.images.Replace(product.Image, "products/"+slug, slug+ext, data)
		if err != nil {
			if errors.Is(err, services.ErrUnsafePath) {
				return validationError(c, map[string]string{"title": "The title contains invalid path characters"})
			}
			return err
		}
		product.Image = imageURL
	}

	product.Title = req.Title
	product.Slug = slug
	product.Price = req.Price
	product.Description = req.Description
	product.Category = req.Category
	product.Featured = req.Featured

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
		"message": "The " + product.Title + " was updated successfully",
	})
}

// Destroy removes the stored image, then the product row.
func (h *ProductHandler) Destroy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.images.Remove(product.Image); err != nil {
		return err
	}

	if err := h.db.Delete(&product).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// readImageUpload enforces the extension allow-list and the size cap, then
// reads the file into memory. Returns a field→message map on rejection.
func readImageUpload(file *multipart.FileHeader) ([]byte, string, map[string]string) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return nil, "", map[string]string{"image": "Must be a jpeg, jpg, png, gif or svg image"}
	}

	if file.Size > maxImageSize {
		return nil, "", map[string]string{"image": "Image may not be larger than 2MB"}
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", map[string]string{"image": "Could not read uploaded image"}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", map[string]string{"image": "Could not read uploaded image"}
	}

	return data, ext, nil
}
