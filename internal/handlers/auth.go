package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storelane/internal/config"
	"github.com/example/storelane/internal/middleware"
	"github.com/example/storelane/internal/models"
	"github.com/example/storelane/internal/services"
	"github.com/example/storelane/internal/utils"
)

// AuthHandler bundles dependencies for registration and session endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   services.Notifier
	images services.ImageStore
	log    *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mail services.Notifier, images services.ImageStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mail: mail, images: images, log: log}
}

type registerRequest struct {
	FirstName            string `json:"firstName" validate:"required,min=3"`
	LastName             string `json:"lastName" validate:"required,min=3"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Telephone            string `json:"telephone" validate:"required"`
	Role                 string `json:"role" validate:"omitempty,oneof=admin agent customer"`
}

// Register creates a new, inactive user account and mails the activation
// token.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationError(c, map[string]string{"email": "The email has already been taken"})
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	activationToken, err := utils.RandomToken(utils.SecretTokenLength)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate activation token")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	user := models.User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Telephone:       req.Telephone,
		PasswordHash:    passwordHash,
		Role:            role,
		Active:          false,
		ActivationToken: activationToken,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	// The account is usable without an avatar, so storage trouble is logged
	// rather than failing the registration.
	if avatar, err := services.GenerateAvatar(user.FirstName, user.LastName); err != nil {
		h.log.Warn("failed to generate avatar",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	} else if url, err := h.images.Save("avatars/"+user.ID.String(), "avatar.png", avatar); err != nil {
		h.log.Warn("failed to store avatar",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	} else if err := h.db.Model(&user).Update("avatar", url).Error; err != nil {
		return err
	}

	if err := h.mail.ActivationRequested(&user, activationToken); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User Created!",
	})
}

// Activate redeems an activation token. The token is single-use: it is
// cleared on success, so a second redemption finds no match.
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	token := c.Params("token")

	var user models.User
	if err := h.db.Where("activation_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "This activation token is invalid")
		}
		return err
	}

	now := time.Now()
	user.Active = true
	user.ActivationToken = ""
	user.EmailVerifiedAt = &now
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	if err := h.mail.Activated(&user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

type activationTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestActivationToken regenerates the activation token for an existing
// account and resends the activation mail.
func (h *AuthHandler) RequestActivationToken(c *fiber.Ctx) error {
	var req activationTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found, please register")
		}
		return err
	}

	token, err := utils.RandomToken(utils.SecretTokenLength)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate activation token")
	}

	user.ActivationToken = token
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	if err := h.mail.ActivationRequested(&user, token); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "A new verification link has been sent to your email address",
	})
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

// Login authenticates a user and issues a fresh bearer token. Failures are
// reported with one generic message regardless of cause, so responses do not
// reveal whether an email is registered.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return validationError(c, errs)
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err != nil || !user.Active || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid Credentials!")
	}

	ttl := h.cfg.TokenExpires
	if req.RememberMe {
		ttl = h.cfg.RememberExpires
	}

	// One row per issued token; there is no cap on concurrent sessions.
	accessToken := models.AccessToken{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := h.db.Create(&accessToken).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, accessToken.ID, ttl)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
	})
}

// Logout revokes every token issued to the calling user, invalidating all
// of their sessions, not just the current one.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.AccessToken{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "You have logout successfully!",
	})
}
