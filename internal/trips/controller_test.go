package trips

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "trips-test-secret"

func setupRouter(t *testing.T) (*gin.Engine, *fakeRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	repo := newFakeRepo()
	ctrl := NewController(NewService(repo, cache.Noop()))

	r := gin.New()
	NewRouter(ctrl, cfg).SetupRoutes(r.Group("/api/v1"))
	return r, repo
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    "ADMIN",
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Errors     struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"errors"`
}

func perform(r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestTripRoutes_GetTrip(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := perform(r, http.MethodGet, "/api/v1/trips/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := perform(r, http.MethodGet, "/api/v1/trips/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TRIP_NOT_FOUND", resp.Errors.Code)
}

func TestTripRoutes_AdminCreate(t *testing.T) {
	r, repo := setupRouter(t)
	req := createRequest()

	w, _ := perform(r, http.MethodPost, "/api/v1/admin/trips", "", req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := perform(r, http.MethodPost, "/api/v1/admin/trips", adminToken(t), req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created TripResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Len(t, repo.trips, 1)
	assert.Equal(t, 30, created.AvailableSeats)

	w, resp = perform(r, http.MethodGet, "/api/v1/trips/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"ticket_status":"Available"`)
}

func TestTripRoutes_AdminCreate_Validation(t *testing.T) {
	r, _ := setupRouter(t)

	req := createRequest()
	req.Title = ""
	w, resp := perform(r, http.MethodPost, "/api/v1/admin/trips", adminToken(t), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Errors.Code)
	assert.Equal(t, "required", resp.Errors.Details["title"])
}

func TestTripRoutes_ListRejectsUnknownStatus(t *testing.T) {
	r, _ := setupRouter(t)

	w, resp := perform(r, http.MethodGet, "/api/v1/trips?status=Lost", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", resp.Errors.Code)

	w, _ = perform(r, http.MethodGet, "/api/v1/trips?status=Upcoming", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
