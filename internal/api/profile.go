package api

import (
	"net/http" // HTTP status codes

	"mebe/internal/session"  // Session resolution
	"mebe/internal/workflow" // Account operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// AddBankRequest represents a bank-link request
type AddBankRequest struct {
	BankName      string `json:"bankName" binding:"required"`      // Bank name must be provided
	AccountNumber string `json:"accountNumber" binding:"required"` // Account number must be provided
}

// ChangePasswordRequest represents a password change from the Security screen
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"` // Current password
	NewPassword     string `json:"newPassword" binding:"required"`     // New password
	ConfirmPassword string `json:"confirmPassword" binding:"required"` // Confirmation
}

// MeHandler returns the authenticated member's record, override applied
func MeHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// AddBankHandler appends a bank account to the member's linked list
func AddBankHandler(wf *workflow.Service, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		var req AddBankRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updated, err := wf.AddBank(c.Request.Context(), user, req.BankName, req.AccountNumber)
		if workflow.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Liên kết ngân hàng thất bại"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": updated})
	}
}

// ChangePasswordHandler verifies and replaces the member's password
func ChangePasswordHandler(wf *workflow.Service, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		err := wf.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
		if workflow.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Đổi mật khẩu thất bại"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Đã cập nhật mật khẩu"})
	}
}
