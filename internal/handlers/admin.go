package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/utils"
)

// AdminHandler manages admin-only user administration. Every route is gated
// on the admin role in the route table.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// Index returns a paginated user list with role associations, the role
// table and aggregate user counts per role.
func (h *AdminHandler) Index(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := h.db.Preload("Roles").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at asc").
		Find(&users).Error; err != nil {
		return err
	}

	type roleCount struct {
		Role  string `json:"role"`
		Count int64  `json:"count"`
	}
	var roleCounts []roleCount
	if err := h.db.Model(&models.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&roleCounts).Error; err != nil {
		return err
	}

	usersPerRole := make(map[string]int64)
	for _, rc := range roleCounts {
		usersPerRole[rc.Role] = rc.Count
	}

	var roles []models.Role
	if err := h.db.Find(&roles).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "List of all users",
		"users":   users,
		"roles":   roles,
		"counts":  usersPerRole,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Show returns a single user with role associations.
func (h *AdminHandler) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

type adminUpdateRequest struct {
	Active *bool    `json:"active"`
	Roles  []string `json:"roles"`
}

// Update sets the active flag and syncs the user's role associations to the
// given set. The first role in the set becomes the primary role used by
// authorization checks.
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	var req adminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Roles) > 0 {
		var roles []models.Role
		if err := h.db.Where("name IN ?", req.Roles).Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) != len(req.Roles) {
			return validationError(c, map[string]string{"roles": "Contains an unknown role"})
		}

		if err := h.db.Model(&user).Association("Roles").Replace(roles); err != nil {
			return err
		}
		user.Role = req.Roles[0]
	}

	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Destroy deletes the user outright, along with their issued tokens, cart
// rows and any pending password reset.
func (h *AdminHandler) Destroy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AccessToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("email = ?", user.Email).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User Deleted Successfully!",
	})
}
