package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebe/internal/domain"
	"mebe/internal/middleware"
	"mebe/internal/session"
	"mebe/internal/store"
	"mebe/internal/utils"
	"mebe/internal/workflow"
)

const testSecret = "test-secret"

// newTestRouter wires the full route table over a fresh local store, with
// caching disabled (nil Redis client).
func newTestRouter(t *testing.T) (*gin.Engine, store.Store, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(st, "0000", "")
	wf := workflow.NewService(st)

	seedHash, err := utils.HashPassword("admin")
	require.NoError(t, err)
	require.NoError(t, sessions.SeedMasterAdmin(context.Background(), "https://avatars.test/", seedHash))

	r := gin.New()
	r.POST("/register", RegisterHandler(wf, sessions, testSecret, "https://avatars.test/"))
	r.POST("/login", LoginHandler(wf, sessions, testSecret))
	r.GET("/gifts", ListGiftsHandler("http://m.me/support"))

	member := r.Group("")
	member.Use(middleware.JWTAuthMiddleware(testSecret))
	member.GET("/me", MeHandler(sessions))
	member.POST("/transactions", SubmitTransactionHandler(wf, sessions, nil))
	member.GET("/transactions", GetTransactionHistoryHandler(st, sessions, nil))
	member.POST("/banks", AddBankHandler(wf, sessions))
	member.POST("/password", ChangePasswordHandler(wf, sessions))
	member.GET("/notifications", ListNotificationsHandler(st, sessions))
	member.POST("/notifications/read", MarkAllNotificationsReadHandler(st, sessions))
	member.DELETE("/notifications", ClearNotificationsHandler(st, sessions))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.AdminOnlyMiddleware(sessions))
	adminGroup.GET("/users", ListUsersHandler(st, nil))
	adminGroup.PUT("/users/:phone", UpdateUserHandler(st, nil))
	adminGroup.GET("/transactions", ListTransactionsHandler(st, nil))
	adminGroup.POST("/transactions/:id/approve", ApproveTransactionHandler(wf, nil))
	adminGroup.POST("/transactions/:id/reject", RejectTransactionHandler(wf, nil))

	return r, st, sessions
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

// registerMember registers a member and returns their token.
func registerMember(t *testing.T, r *gin.Engine, name, phone string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": name, "phone": phone, "password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateJWT("0000", testSecret)
	require.NoError(t, err)
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _, _ := newTestRouter(t)

	token := registerMember(t, r, "Lan", "0911111111")
	assert.NotEmpty(t, token)

	// Duplicate phone
	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": "Mai", "phone": "0911111111", "password": "secret2", "confirmPassword": "secret2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Số điện thoại đã được đăng ký", decode(t, w)["error"])

	// Validation error surfaces inline
	w = doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": "Mai", "phone": "12345", "password": "secret2", "confirmPassword": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Login round trip
	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"phone": "0911111111", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Lan", user["name"])
	// The password never leaves the server
	_, leaked := user["password"]
	assert.False(t, leaked)

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"phone": "0911111111", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMasterAdminLoginGetsOverride(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"phone": "0000", "password": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, true, user["isAdmin"])
}

func TestMeRequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := registerMember(t, r, "Lan", "0911111111")
	w = doJSON(t, r, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitAndApproveFlow(t *testing.T) {
	r, st, _ := newTestRouter(t)
	token := registerMember(t, r, "Lan", "0911111111")

	// Link a bank first
	w := doJSON(t, r, http.MethodPost, "/banks", token, gin.H{"bankName": "Vietcombank", "accountNumber": "001122334455"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	banks := user["banks"].([]any)
	require.Len(t, banks, 1)
	bankID := banks[0].(map[string]any)["id"].(string)

	// Submit a deposit
	w = doJSON(t, r, http.MethodPost, "/transactions", token, gin.H{"type": "DEPOSIT", "amount": 500000, "bankId": bankID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode(t, w)["transaction"].(map[string]any)
	txID := tx["id"].(string)
	assert.Equal(t, "PENDING", tx["status"])

	// A member token cannot approve
	w = doJSON(t, r, http.MethodPost, "/admin/transactions/"+txID+"/approve", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The master admin can
	w = doJSON(t, r, http.MethodPost, "/admin/transactions/"+txID+"/approve", adminToken(t), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := st.GetUser(context.Background(), "0911111111")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), stored.Balance)

	// History shows the decided record
	w = doJSON(t, r, http.MethodGet, "/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	records := body["transactions"].([]any)
	assert.Equal(t, "APPROVED", records[0].(map[string]any)["status"])
}

func TestSubmitValidationSurfacesInline(t *testing.T) {
	r, _, _ := newTestRouter(t)
	token := registerMember(t, r, "Lan", "0911111111")

	// No linked bank resolves to an empty bank and fails validation
	w := doJSON(t, r, http.MethodPost, "/transactions", token, gin.H{"type": "DEPOSIT", "amount": 500000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Vui lòng chọn ngân hàng liên kết", decode(t, w)["error"])

	// Unknown type is rejected before the workflow runs
	w = doJSON(t, r, http.MethodPost, "/transactions", token, gin.H{"type": "TRANSFER", "amount": 500000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectFlow(t *testing.T) {
	r, st, _ := newTestRouter(t)
	token := registerMember(t, r, "Lan", "0911111111")

	w := doJSON(t, r, http.MethodPost, "/banks", token, gin.H{"bankName": "ACB", "accountNumber": "999"})
	require.Equal(t, http.StatusCreated, w.Code)
	bankID := decode(t, w)["user"].(map[string]any)["banks"].([]any)[0].(map[string]any)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/transactions", token, gin.H{"type": "WITHDRAW", "amount": 100000, "bankId": bankID})
	assert.Equal(t, http.StatusBadRequest, w.Code) // insufficient balance

	w = doJSON(t, r, http.MethodPost, "/transactions", token, gin.H{"type": "DEPOSIT", "amount": 100000, "bankId": bankID})
	require.Equal(t, http.StatusCreated, w.Code)
	txID := decode(t, w)["transaction"].(map[string]any)["id"].(string)

	// Blank reason is rejected
	w = doJSON(t, r, http.MethodPost, "/admin/transactions/"+txID+"/reject", adminToken(t), gin.H{"reason": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/admin/transactions/"+txID+"/reject", adminToken(t), gin.H{"reason": "Invalid bank info"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tx, err := st.GetTransaction(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, tx.Status)
	assert.Equal(t, "Invalid bank info", tx.RejectionReason)
}

func TestAdminListAndEditUsers(t *testing.T) {
	r, st, _ := newTestRouter(t)
	registerMember(t, r, "Lan", "0911111111")

	w := doJSON(t, r, http.MethodGet, "/admin/users", adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"]) // seeded admin + Lan

	// Rename and adjust the balance
	w = doJSON(t, r, http.MethodPut, "/admin/users/0911111111", adminToken(t), gin.H{
		"name": "Lan Anh", "phone": "0911111111", "balance": 250000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := st.GetUser(context.Background(), "0911111111")
	require.NoError(t, err)
	assert.Equal(t, "Lan Anh", stored.Name)
	assert.Equal(t, int64(250000), stored.Balance)

	// Phone change re-keys the account
	w = doJSON(t, r, http.MethodPut, "/admin/users/0911111111", adminToken(t), gin.H{
		"name": "Lan Anh", "phone": "0922222222", "balance": 250000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, err = st.GetUser(context.Background(), "0911111111")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetUser(context.Background(), "0922222222")
	assert.NoError(t, err)
}

func TestNotificationEndpoints(t *testing.T) {
	r, _, _ := newTestRouter(t)
	token := registerMember(t, r, "Lan", "0911111111")

	// Registration leaves the welcome notification
	w := doJSON(t, r, http.MethodGet, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notifs := decode(t, w)["notifications"].([]any)
	require.Len(t, notifs, 1)
	assert.Equal(t, false, notifs[0].(map[string]any)["isRead"])

	w = doJSON(t, r, http.MethodPost, "/notifications/read", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/notifications", token, nil)
	notifs = decode(t, w)["notifications"].([]any)
	assert.Equal(t, true, notifs[0].(map[string]any)["isRead"])

	w = doJSON(t, r, http.MethodDelete, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/notifications", token, nil)
	assert.Empty(t, decode(t, w)["notifications"])
}

func TestGiftCatalog(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/gifts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	gifts := body["gifts"].([]any)
	assert.Len(t, gifts, 5)
	assert.Equal(t, "http://m.me/support", body["contactLink"])
}
