package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error checks
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"mebe/internal/domain"     // Record models
	"mebe/internal/middleware" // Context keys
	"mebe/internal/session"    // Session resolution
	"mebe/internal/store"      // Record store
	"mebe/internal/utils"      // Utility functions
	"mebe/internal/workflow"   // Transaction workflow

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// SubmitTransactionRequest represents a deposit/withdraw request
type SubmitTransactionRequest struct {
	Type   string `json:"type" binding:"required"`        // DEPOSIT or WITHDRAW
	Amount int64  `json:"amount" binding:"required,gt=0"` // Amount in whole currency units
	BankID string `json:"bankId"`                         // Which linked bank to use
}

// currentUser resolves the authenticated caller from the request context.
func currentUser(c *gin.Context, sessions *session.Manager) (domain.User, bool) {
	phone, exists := c.Get(middleware.PhoneKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.User{}, false
	}
	user, err := sessions.Resolve(c.Request.Context(), phone.(string))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.User{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return domain.User{}, false
	}
	return user, true
}

// invalidateHistory drops the cached transaction history pages for a phone
// (simple version: delete first 5 pages, as after any write)
func invalidateHistory(ctx context.Context, rdb *redis.Client, phone string) {
	for i := 1; i <= 5; i++ {
		_ = utils.DeleteCache(ctx, rdb, "txhistory:phone:"+phone+":page:"+strconv.Itoa(i)+":size:20")
	}
}

// SubmitTransactionHandler creates a PENDING deposit/withdraw request for
// the authenticated member. The balance is untouched until admin approval.
func SubmitTransactionHandler(wf *workflow.Service, sessions *session.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		var req SubmitTransactionRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || (req.Type != domain.TxDeposit && req.Type != domain.TxWithdraw) {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve the selected bank from the user's linked list
		var bank domain.BankAccount
		for _, b := range user.Banks {
			if b.ID == req.BankID {
				bank = b
				break
			}
		}
		tx, err := wf.Submit(c.Request.Context(), user, req.Type, req.Amount, bank)
		if workflow.IsValidation(err) {
			// Inline validation message for the originating screen
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			// Store failure, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Gửi yêu cầu thất bại, vui lòng thử lại"})
			return
		}
		// Invalidate the cached history and pending lists after the write
		ctx := context.Background()
		invalidateHistory(ctx, rdb, user.Phone)
		_ = utils.DeleteCache(ctx, rdb, "admin:txs:pending")
		// Return the created record; it awaits admin approval
		c.JSON(http.StatusCreated, gin.H{"transaction": tx})
	}
}

// GetTransactionHistoryHandler returns the authenticated member's
// transactions, newest first, paginated and cached
func GetTransactionHistoryHandler(st store.Store, sessions *session.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		// Redis cache key
		cacheKey := "txhistory:phone:" + user.Phone + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.TransactionRecord `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int                        `json:"total"`        // Total transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		all, err := st.ListTransactions(c.Request.Context())
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Keep only the caller's records; the store returns newest first
		mine := make([]domain.TransactionRecord, 0, len(all))
		for _, t := range all {
			if t.UserPhone == user.Phone {
				mine = append(mine, t)
			}
		}
		total := len(mine)
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
		resp := gin.H{
			"transactions": mine[start:end], // Requested page
			"page":         page,            // Current page
			"page_size":    pageSize,        // Page size
			"total":        total,           // Total transactions
			"total_pages":  totalPages,      // Total pages
			"cached":       false,           // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
