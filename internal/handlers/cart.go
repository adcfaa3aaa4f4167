package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/middleware"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/utils"
)

// CartHandler manages the authenticated user's cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// List returns every cart row owned by the caller.
func (h *CartHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	// Non-nil so an empty cart serializes as [] rather than null.
	items := []models.CartItem{}
	if err := h.db.Where("user_id = ?", user.ID).Order("created_at asc").Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"cart":    items,
	})
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// Add accepts a single item or a batch. Cart identity is (user, product):
// adding a product already in the cart increments its quantity instead of
// creating a second row. Product name, price and image are snapshotted from
// the product at add time and never refreshed afterwards.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := parseCartItems(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no cart items provided")
	}

	for _, item := range items {
		if errs := utils.ValidateStruct(item); errs != nil {
			return validationError(c, errs)
		}
	}

	var result []models.CartItem
	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
			}

			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "product not found")
				}
				return err
			}

			var row models.CartItem
			err = tx.Where("user_id = ? AND product_id = ?", user.ID, productID).First(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = models.CartItem{
					UserID:       user.ID,
					ProductID:    product.ID,
					ProductName:  product.Title,
					ProductPrice: product.Price,
					Image:        product.Image,
					Quantity:     item.Quantity,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				row.Quantity += item.Quantity
				if err := tx.Save(&row).Error; err != nil {
					return err
				}
			}

			result = append(result, row)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"cart":    result,
	})
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// Update overwrites the quantity of one of the caller's cart rows.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cartUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"cart":    item,
	})
}

// Remove deletes one cart row. Rows belonging to other users read as not
// found, so cross-user deletion is impossible.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Clear deletes every cart row owned by the caller and nothing else.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseCartItems accepts either a single item object or a JSON array of
// items.
func parseCartItems(body []byte) ([]cartItemRequest, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []cartItemRequest
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var item cartItemRequest
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []cartItemRequest{item}, nil
}
