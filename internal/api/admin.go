package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error checks
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"mebe/internal/domain"   // Record models
	"mebe/internal/store"    // Record store
	"mebe/internal/utils"    // Utility functions
	"mebe/internal/workflow" // Approve/reject workflow

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// UserAdminResponse represents the member data returned to the dashboard
type UserAdminResponse struct {
	Phone   string               `json:"phone"`   // Phone (primary key)
	Name    string               `json:"name"`    // Display name
	Balance int64                `json:"balance"` // Balance
	Avatar  string               `json:"avatar"`  // Avatar URL
	IsAdmin bool                 `json:"isAdmin"` // Admin flag
	Banks   []domain.BankAccount `json:"banks"`   // Linked banks
}

// AdminUpdateUserRequest is the full-record member edit, phone rename included
type AdminUpdateUserRequest struct {
	Phone    string               `json:"phone" binding:"required"` // New phone (may equal the path phone)
	Name     string               `json:"name" binding:"required"`  // Display name
	Balance  int64                `json:"balance"`                  // Balance, admin-editable
	Avatar   string               `json:"avatar"`                   // Avatar URL
	IsAdmin  bool                 `json:"isAdmin"`                  // Admin flag
	Password string               `json:"password"`                 // Optional new password (plain, re-hashed)
	Banks    []domain.BankAccount `json:"banks"`                    // Replacement bank list
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason"` // Reason shown to the member
}

// invalidateAdminCaches drops the cached dashboard lists after any write
func invalidateAdminCaches(ctx context.Context, rdb *redis.Client) {
	// Simple version: delete the first 5 pages of each list
	for i := 1; i <= 5; i++ {
		_ = utils.DeleteCache(ctx, rdb, "admin:users:page="+strconv.Itoa(i)+":size=20")
	}
	_ = utils.DeleteCache(ctx, rdb, "admin:txs:pending")
}

// ListUsersHandler returns all members with their balances and banks
func ListUsersHandler(st store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of members
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int                 `json:"total"`       // Total number of members
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of members
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of members
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		users, err := st.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		total := len(users)
		totalPages := (total + pageSize - 1) / pageSize // Calculate total pages
		// Slice out the requested page
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		// Map members to response format
		resp := make([]UserAdminResponse, 0, end-start)
		for _, u := range users[start:end] {
			resp = append(resp, UserAdminResponse{
				Phone:   u.Phone,
				Name:    u.Name,
				Balance: u.Balance,
				Avatar:  u.Avatar,
				IsAdmin: u.IsAdmin,
				Banks:   u.Banks,
			})
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of members
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of members
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTransactionsHandler returns all transactions, newest first, with
// optional filtering by member phone or status
func ListTransactionsHandler(st store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		status := c.Query("status") // Optional status filter
		phone := c.Query("phone")   // Optional member filter
		// The pending list is the hot path on the dashboard; cache it alone
		cacheKey := ""
		if status == domain.StatusPending && phone == "" {
			cacheKey = "admin:txs:pending"
			var cached []domain.TransactionRecord
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
				return
			}
		}
		all, err := st.ListTransactions(c.Request.Context())
		if err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Apply the filters in memory; the store returns newest first
		txs := make([]domain.TransactionRecord, 0, len(all))
		for _, t := range all {
			if status != "" && !strings.EqualFold(t.Status, status) {
				continue
			}
			if phone != "" && t.UserPhone != phone {
				continue
			}
			txs = append(txs, t)
		}
		if cacheKey != "" {
			// Cache the pending list for future requests
			_ = utils.SetCache(ctx, rdb, cacheKey, txs, 10*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs, "cached": false}) // Return the response
	}
}

// ApproveTransactionHandler applies a PENDING transaction (admin only)
func ApproveTransactionHandler(wf *workflow.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		txID := c.Param("id") // Transaction id from the path
		if err := wf.Approve(c.Request.Context(), txID); err != nil {
			// Store failure; already issued calls are not rolled back
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Phê duyệt thất bại, vui lòng thử lại"})
			return
		}
		// Invalidate the cached dashboard lists after the write
		invalidateAdminCaches(context.Background(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Đã phê duyệt giao dịch"})
	}
}

// RejectTransactionHandler rejects a PENDING transaction with a reason
func RejectTransactionHandler(wf *workflow.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		txID := c.Param("id") // Transaction id from the path
		var req RejectRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		err := wf.Reject(c.Request.Context(), txID, req.Reason)
		if workflow.IsValidation(err) {
			// Empty reason is rejected client-side with no state change
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Từ chối thất bại, vui lòng thử lại"})
			return
		}
		invalidateAdminCaches(context.Background(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Đã từ chối giao dịch"})
	}
}

// UpdateUserHandler is the dashboard member editor: any field including
// balance, admin flag, bank list and the phone itself
func UpdateUserHandler(st store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalPhone := c.Param("phone") // Member being edited
		var req AdminUpdateUserRequest    // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		existing, err := st.GetUser(c.Request.Context(), originalPhone)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy hội viên"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		// A phone rename re-keys the member's notifications and transaction
		// references first; past snapshots stay as written
		if req.Phone != originalPhone {
			err := st.MigratePhone(c.Request.Context(), originalPhone, req.Phone)
			if errors.Is(err, store.ErrDuplicateKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Số điện thoại đã được đăng ký"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to migrate phone"})
				return
			}
		}
		updated := domain.User{
			Phone:   req.Phone,
			Name:    req.Name,
			Balance: req.Balance,
			Avatar:  req.Avatar,
			IsAdmin: req.IsAdmin,
			Banks:   req.Banks,
		}
		// Keep the stored hash unless the admin set a new password
		updated.Password = existing.Password
		if req.Password != "" {
			hash, err := utils.HashPassword(req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			updated.Password = hash
		}
		if err := st.UpdateUser(c.Request.Context(), updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cập nhật hội viên thất bại"})
			return
		}
		// Invalidate every cache touching this member
		ctx := context.Background()
		invalidateAdminCaches(ctx, rdb)
		invalidateHistory(ctx, rdb, originalPhone)
		invalidateHistory(ctx, rdb, req.Phone)
		c.JSON(http.StatusOK, gin.H{"user": updated})
	}
}
