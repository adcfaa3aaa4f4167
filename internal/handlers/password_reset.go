package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storelane/internal/config"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/services"
	"github.com/example/storelane/internal/utils"
)

// resetTokenTTL bounds how long a reset token stays redeemable, measured
// from the row's last update. Expiry is enforced lazily on lookup; there is
// no background sweep.
const resetTokenTTL = 720 * time.Minute

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db   *gorm.DB
	cfg  *config.Config
	mail services.Notifier
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, mail services.Notifier) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, mail: mail}
}

type createResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	RedirectURL string `json:"redirect_url"`
}

// Create starts the reset flow: it upserts the single pending reset row for
// the email, replacing any earlier request, and mails the fresh token.
func (h *PasswordResetHandler) Create(c *fiber.Ctx) error {
	var req createResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "We can't find a user with that email address.")
		}
		return err
	}

	token, err := utils.RandomToken(utils.SecretTokenLength)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate reset token")
	}

	reset := models.PasswordReset{
		Email:       user.Email,
		Token:       token,
		RedirectURL: req.RedirectURL,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "redirect_url", "updated_at"}),
	}).Create(&reset).Error; err != nil {
		return err
	}

	if err := h.mail.PasswordResetRequested(&user, token, req.RedirectURL); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "We have e-mailed your password reset link!",
	})
}

// Find looks up a pending reset by token. Rows older than resetTokenTTL are
// deleted on sight and reported as invalid.
func (h *PasswordResetHandler) Find(c *fiber.Ctx) error {
	token := c.Params("token")

	var reset models.PasswordReset
	if err := h.db.Where("token = ?", token).First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "This password reset token is invalid.")
		}
		return err
	}

	if h.isExpired(&reset) {
		if err := h.db.Delete(&reset).Error; err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusNotFound, "This password reset token is invalid.")
	}

	return c.JSON(reset)
}

type resetRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Token                string `json:"token" validate:"required"`
}

// Reset consumes a (token, email) pair, stores the new password hash and
// deletes the reset row so the token cannot be replayed. Previously issued
// bearer tokens are deliberately left valid.
func (h *PasswordResetHandler) Reset(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var reset models.PasswordReset
	if err := h.db.Where("token = ? AND email = ?", req.Token, req.Email).First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "This password reset token is invalid.")
		}
		return err
	}

	if h.isExpired(&reset) {
		if err := h.db.Delete(&reset).Error; err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusNotFound, "This password reset token is invalid.")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "We can't find a user with that email address.")
		}
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user.PasswordHash = passwordHash
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	if err := h.db.Delete(&reset).Error; err != nil {
		return err
	}

	if err := h.mail.PasswordResetSucceeded(&user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

func (h *PasswordResetHandler) isExpired(reset *models.PasswordReset) bool {
	return time.Since(reset.UpdatedAt) > resetTokenTTL
}
