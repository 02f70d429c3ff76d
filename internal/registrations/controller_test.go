package registrations

import (
	"bytes"
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
	"github.com/stretchr/testify/require"
)

const testSecret = "registrations-test-secret"

func setupRouter(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	svc := newTestService(repo, config.RegistrationPolicyBlock, fakeUsers{})
	NewRouter(NewController(svc), cfg).SetupRoutes(r.Group("/api/v1"))
	return r, repo
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

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  struct {
		Code string `json:"code"`
	} `json:"errors"`
}

func call(r http.Handler, method, path, token string, body interface{}) (int, envelope) {
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

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestRegistrationRoutes_Lifecycle(t *testing.T) {
	r, repo := setupRouter(t)
	trip := repo.addTrip(capacityTrip(3))
	user := uuid.New()
	userToken := tokenFor(t, user, "USER")
	adminToken := tokenFor(t, uuid.New(), "ADMIN")
	base := "/api/v1/trips/" + trip.ID.String()

	code, _ := call(r, http.MethodPost, base+"/register", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := call(r, http.MethodPost, base+"/register", userToken, RegisterRequest{NumGuests: -1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", env.Errors.Code)

	code, env = call(r, http.MethodPost, "/api/v1/trips/not-a-uuid/register", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", env.Errors.Code)

	code, env = call(r, http.MethodPost, base+"/register", userToken, nil)
	require.Equal(t, http.StatusCreated, code)
	var reg Registration
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, StatusPending, reg.Status)

	code, env = call(r, http.MethodPost, base+"/register", userToken, RegisterRequest{NumGuests: 2})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ALREADY_REGISTERED", env.Errors.Code)

	code, env = call(r, http.MethodGet, base+"/registration-status", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user_id":"`+user.String()+`","trip_id":"`+trip.ID.String()+`","status":"pending"}`, string(env.Data))

	statusPath := "/api/v1/admin/registrations/" + reg.ID.String() + "/status"
	code, _ = call(r, http.MethodPut, statusPath, userToken, UpdateStatusRequest{Status: StatusApproved})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = call(r, http.MethodGet, "/api/v1/admin/registrations/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var pending []PendingRegistration
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Len(t, pending, 1)

	code, env = call(r, http.MethodPut, statusPath, adminToken, UpdateStatusRequest{Status: StatusApproved})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Registration approved", env.Message)

	code, env = call(r, http.MethodDelete, "/api/v1/registrations/"+reg.ID.String(), userToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CANNOT_CANCEL_APPROVED", env.Errors.Code)

	code, env = call(r, http.MethodGet, "/api/v1/admin/trips/"+trip.ID.String()+"/registrations/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pending":0,"approved":1,"rejected":0,"total_guests":1,"available_spots":2}`, string(env.Data))
}

func TestRegistrationRoutes_CancelAndMine(t *testing.T) {
	r, repo := setupRouter(t)
	trip := repo.addTrip(capacityTrip(3))
	user := uuid.New()
	userToken := tokenFor(t, user, "USER")

	code, env := call(r, http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/register", userToken, RegisterRequest{NumGuests: 2, Notes: "window seats"})
	require.Equal(t, http.StatusCreated, code)
	var reg Registration
	require.NoError(t, json.Unmarshal(env.Data, &reg))

	code, env = call(r, http.MethodGet, "/api/v1/registrations/my", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []UserRegistration
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, 900.0, mine[0].Amount)

	code, env = call(r, http.MethodDelete, "/api/v1/registrations/"+reg.ID.String(), tokenFor(t, uuid.New(), "USER"), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "REGISTRATION_NOT_FOUND", env.Errors.Code)

	code, _ = call(r, http.MethodDelete, "/api/v1/registrations/"+reg.ID.String(), userToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = call(r, http.MethodGet, "/api/v1/registrations/my", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}
