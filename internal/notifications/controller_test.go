package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanderly/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "notifications-test-secret"

func setupRouter(t *testing.T) (*gin.Engine, *mockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := new(mockStore)
	r := gin.New()
	NewRouter(NewController(NewService(store)), &config.Config{JWT: config.JWTConfig{Secret: testSecret}}).
		SetupRoutes(r.Group("/api/v1"))
	return r, store
}

func tokenFor(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotificationRoutes_User(t *testing.T) {
	r, store := setupRouter(t)
	user := uuid.New()
	token := tokenFor(t, user, "USER")
	id := uuid.NewString()

	store.On("List", mock.Anything, AudienceUser, user.String(), int64(5), int64(0)).
		Return([]Notification{{ID: id, Type: TypeTripApproved}}, nil)
	store.On("CountUnread", mock.Anything, AudienceUser, user.String()).Return(int64(1), nil)
	store.On("MarkRead", mock.Anything, AudienceUser, user.String(), id).Return(true, nil)
	store.On("MarkAllRead", mock.Anything, AudienceUser, user.String()).Return(int64(1), nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/notifications", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/notifications?limit=500", token).Code)

	w := do(r, http.MethodGet, "/api/v1/notifications?limit=5", token)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data.Notifications, 1)
	assert.EqualValues(t, 1, env.Data.UnreadCount)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/notifications/unread-count", token).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/notifications/"+id+"/read", token).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/api/v1/notifications/bogus/read", token).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/notifications/read-all", token).Code)
}

func TestNotificationRoutes_Admin(t *testing.T) {
	r, store := setupRouter(t)
	id := uuid.NewString()

	store.On("CountUnread", mock.Anything, AudienceAdmin, uuid.Nil.String()).Return(int64(2), nil)
	store.On("MarkRead", mock.Anything, AudienceAdmin, uuid.Nil.String(), id).Return(false, nil)

	user := tokenFor(t, uuid.New(), "USER")
	admin := tokenFor(t, uuid.New(), "ADMIN")

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/admin/notifications/unread-count", user).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/notifications/unread-count", admin).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/api/v1/admin/notifications/"+id+"/read", admin).Code)
}
