package api

import (
	"io"       // Stream writer
	"net/http" // HTTP status codes

	"mebe/internal/middleware" // Context keys
	"mebe/internal/session"    // Session resolution
	syncer "mebe/internal/sync" // Polling watcher

	"github.com/gin-gonic/gin" // Gin web framework
)

// SyncUserHandler streams the caller's user record as server-sent events.
// The underlying watcher polls the store and emits only on change; closing
// the connection cancels the watcher, so no poller outlives its client.
func SyncUserHandler(w *syncer.Watcher, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone, exists := c.Get(middleware.PhoneKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		updates := w.WatchUser(c.Request.Context(), phone.(string))
		c.Stream(func(_ io.Writer) bool {
			user, ok := <-updates
			if !ok {
				return false // Watcher closed, stop streaming
			}
			c.SSEvent("user", sessions.WithOverride(user)) // Override applied on every refresh
			return true
		})
	}
}

// AdminSyncHandler streams the pending transaction queue to the dashboard.
func AdminSyncHandler(w *syncer.Watcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		updates := w.WatchPendingTransactions(c.Request.Context())
		c.Stream(func(_ io.Writer) bool {
			pending, ok := <-updates
			if !ok {
				return false // Watcher closed, stop streaming
			}
			c.SSEvent("pending", pending)
			return true
		})
	}
}
