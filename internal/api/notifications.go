package api

import (
	"net/http" // HTTP status codes

	"mebe/internal/session" // Session resolution
	"mebe/internal/store"   // Record store

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListNotificationsHandler returns the member's notifications, newest first
func ListNotificationsHandler(st store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		notifs, err := st.ListNotifications(c.Request.Context(), user.Phone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifs})
	}
}

// MarkAllNotificationsReadHandler flips the read flag on every notification
func MarkAllNotificationsReadHandler(st store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		if err := st.MarkAllNotificationsRead(c.Request.Context(), user.Phone); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Đã đánh dấu tất cả là đã đọc"})
	}
}

// ClearNotificationsHandler removes the member's notification list
func ClearNotificationsHandler(st store.Store, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, sessions)
		if !ok {
			return
		}
		if err := st.ClearNotifications(c.Request.Context(), user.Phone); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Đã xóa tất cả thông báo"})
	}
}
