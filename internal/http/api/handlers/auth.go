package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/mail"
	"github.com/promptpress/promptpress/internal/models"
	"github.com/promptpress/promptpress/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// verificationTokenTTL is how long an email verification token stays valid.
const verificationTokenTTL = 24 * time.Hour

// uniqueViolationCode is the Postgres error code for unique constraint hits.
const uniqueViolationCode = "23505"

// AuthHandler handles registration, login, and email verification.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	mailer *mail.Mailer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, mailer *mail.Mailer) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, mailer: mailer}
}

// registerRequest defines the payload for creating an account.
type registerRequest struct {
	Username string `json:"username"` // Desired login name.
	Email    string `json:"email"`    // Account email address.
	Password string `json:"password"` // Plaintext password.
}

// Register creates a new account and sends a verification email.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(username) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be at least 3 characters"})
		return
	}
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	hashed, errHash := security.HashPassword(req.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	ctx := c.Request.Context()
	user := models.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if isUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	h.issueVerification(c, user)

	token, errToken := security.IssueUserToken(h.jwtCfg.Secret, user.ID, user.Username, user.Email, h.jwtCfg.Expiry)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": newUserView(user)})
}

// issueVerification creates a verification token and emails it, best-effort.
func (h *AuthHandler) issueVerification(c *gin.Context, user models.User) {
	record := models.VerificationToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().UTC().Add(verificationTokenTTL),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&record).Error; errCreate != nil {
		log.WithError(errCreate).Warn("failed to store verification token")
		return
	}
	if h.mailer != nil {
		_ = h.mailer.SendVerificationEmail(user.Email, user.Username, record.Token)
	}
}

// loginRequest defines the payload for logging in.
type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"` // Login identifier.
	Password        string `json:"password"`        // Plaintext password.
}

// Login authenticates a user by email or username.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	identifier := strings.TrimSpace(req.EmailOrUsername)
	if identifier == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emailOrUsername and password are required"})
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if !security.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errToken := security.IssueUserToken(h.jwtCfg.Secret, user.ID, user.Username, user.Email, h.jwtCfg.Expiry)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": newUserView(user)})
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserView(user)})
}

// verifyEmailRequest defines the payload for confirming an email address.
type verifyEmailRequest struct {
	Token string `json:"token"` // Verification token from the email link.
}

// VerifyEmail confirms an email address using a verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	ctx := c.Request.Context()
	var record models.VerificationToken
	errFind := h.db.WithContext(ctx).
		Where("token = ?", strings.TrimSpace(req.Token)).
		First(&record).Error
	if errFind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification token"})
		return
	}
	if time.Now().UTC().After(record.ExpiresAt) {
		_ = h.db.WithContext(ctx).Delete(&models.VerificationToken{}, record.ID).Error
		c.JSON(http.StatusBadRequest, gin.H{"error": "verification token expired"})
		return
	}

	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", record.UserID).
		Update("email_verified", true).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	_ = h.db.WithContext(ctx).Delete(&models.VerificationToken{}, record.ID).Error

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

// resendVerificationRequest defines the payload for resending a verification email.
type resendVerificationRequest struct {
	Email string `json:"email"` // Address to resend to.
}

// ResendVerification issues a fresh verification token for an unverified account.
// The response never reveals whether the address exists.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	var user models.User
	errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind == nil && !user.EmailVerified {
		_ = h.db.WithContext(ctx).
			Where("user_id = ?", user.ID).
			Delete(&models.VerificationToken{}).Error
		h.issueVerification(c, user)
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a verification email has been sent"})
}

// isUniqueViolation reports whether the error is a duplicate-key failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
