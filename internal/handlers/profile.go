package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/middleware"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/services"
	"github.com/example/storelane/internal/utils"
)

// ProfileHandler manages the authenticated user's own record.
type ProfileHandler struct {
	db     *gorm.DB
	images services.ImageStore
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, images services.ImageStore) *ProfileHandler {
	return &ProfileHandler{db: db, images: images}
}

// Show returns the authenticated user.
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

type profileUpdateRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"omitempty,min=3"`
	LastName  string `json:"lastName" form:"lastName" validate:"omitempty,min=3"`
	Email     string `json:"email" form:"email" validate:"omitempty,email"`
	Telephone string `json:"telephone" form:"telephone"`
}

// Update edits the caller's own profile. The path id must match the
// authenticated user; anyone else gets 401 regardless of role. A supplied
// avatar image replaces the stored one upload-first.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if id != user.ID {
		return fiber.NewError(fiber.StatusUnauthorized, "You can only update your own profile")
	}

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	if req.Email != "" && req.Email != user.Email {
		var count int64
		if err := h.db.Model(&models.User{}).
			Where("email = ? AND id <> ?", req.Email, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return validationError(c, map[string]string{"email": "The email has already been taken"})
		}
		user.Email = req.Email
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Telephone != "" {
		user.Telephone = req.Telephone
	}

	if file, err := c.FormFile("image"); err == nil {
		data, ext, errs := readImageUpload(file)
		if errs != nil {
			return validationError(c, errs)
		}

		url, err := h.images.Replace(user.Avatar, "avatars/"+user.ID.String(), "avatar"+ext, data)
		if err != nil {
			return err
		}
		user.Avatar = url
	}

	if err := h.db.Save(user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}
