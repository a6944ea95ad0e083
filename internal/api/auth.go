package api

import (
	"errors"   // Error checks
	"net/http" // HTTP status codes

	"mebe/internal/session"  // Session resolution
	"mebe/internal/store"    // Record store
	"mebe/internal/utils"    // Utility functions
	"mebe/internal/workflow" // Account operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request and Response structs
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`            // Full name must be provided
	Phone           string `json:"phone" binding:"required"`           // Phone must be provided
	Password        string `json:"password" binding:"required"`        // Password must be provided
	ConfirmPassword string `json:"confirmPassword" binding:"required"` // Confirmation must be provided
}

// Request struct for login
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`    // Phone must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RegisterHandler creates a new member account and opens a session
func RegisterHandler(wf *workflow.Service, sessions *session.Manager, secret, avatarBase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := wf.Register(c.Request.Context(), req.Name, req.Phone, req.Password, req.ConfirmPassword, avatarBase)
		if workflow.IsValidation(err) {
			// Inline validation message for the originating screen
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, store.ErrDuplicateKey) {
			// Registration with an existing phone is a blocking alert client-side
			c.JSON(http.StatusConflict, gin.H{"error": "Số điện thoại đã được đăng ký"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Đăng ký thất bại, vui lòng thử lại"})
			return
		}
		// Issue the session token for the new account
		token, err := utils.GenerateJWT(user.Phone, secret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": sessions.WithOverride(user)})
	}
}

// LoginHandler authenticates a member and returns a JWT token
func LoginHandler(wf *workflow.Service, sessions *session.Manager, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := wf.Login(c.Request.Context(), req.Phone, req.Password)
		if errors.Is(err, workflow.ErrBadCredentials) {
			// Wrong phone or password, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Số điện thoại hoặc mật khẩu không đúng"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Đăng nhập thất bại, vui lòng thử lại"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.Phone, secret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and the resolved user (master override applied)
		c.JSON(http.StatusOK, gin.H{"token": token, "user": sessions.WithOverride(user)})
	}
}
