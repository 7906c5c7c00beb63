package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrdesk/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// testActor stands in for the JWT middleware.
func testActor(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		actor := domain.Actor{ID: id, Role: domain.Role(c.GetHeader("X-Test-Role"))}
		c.Request = c.Request.WithContext(domain.ContextWithActor(c.Request.Context(), actor))
	}
	c.Next()
}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", testActor)
	h := NewHandler(svc)
	h.RegisterRoutes(api)
	h.RegisterReviewRoutes(api)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, user, role string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHandler_BookingFlow(t *testing.T) {
	f := setupStore(t)
	falcon := f.room(t, "Falcon")
	r := newTestRouter(f.svc)

	body := map[string]string{
		"room_id":    falcon.ID,
		"title":      "Standup",
		"date":       "2024-03-01",
		"start_time": "09:00",
		"end_time":   "09:30",
	}

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/bookings", "emp-1", "employee", body)
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)

	var created struct {
		Booking domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, domain.BookingPending, created.Booking.Status)

	code, env = doJSON(t, r, http.MethodPost, "/api/v1/bookings", "emp-2", "employee", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "BOOKING_CONFLICT", env.Error.Code)

	code, env = doJSON(t, r, http.MethodPost, "/api/v1/bookings/check-conflict", "emp-2", "employee", body)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"conflict":true}`, string(env.Data))

	body["room_id"] = "room-missing"
	code, env = doJSON(t, r, http.MethodPost, "/api/v1/bookings/check-conflict", "emp-2", "employee", body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	body["room_id"] = falcon.ID

	code, env = doJSON(t, r, http.MethodPatch, "/api/v1/bookings/"+created.Booking.ID+"/approve", "emp-2", "employee", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = doJSON(t, r, http.MethodPatch, "/api/v1/bookings/"+created.Booking.ID+"/approve", "lead-1", "leader", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, http.MethodPatch, "/api/v1/bookings/"+created.Booking.ID+"/reject", "lead-1", "leader", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = doJSON(t, r, http.MethodPatch, "/api/v1/bookings/"+created.Booking.ID+"/cancel", "emp-1", "employee", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/users/me/bookings", "emp-1", "employee", nil)
	require.Equal(t, http.StatusOK, code)
	var list BookingList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)
}

func TestHandler_ErrorMapping(t *testing.T) {
	f := setupStore(t)
	falcon := f.room(t, "Falcon")
	r := newTestRouter(f.svc)

	t.Run("unauthenticated", func(t *testing.T) {
		code, env := doJSON(t, r, http.MethodGet, "/api/v1/bookings", "", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("validation details", func(t *testing.T) {
		code, env := doJSON(t, r, http.MethodPost, "/api/v1/bookings", "emp-1", "employee", map[string]string{
			"room_id":  falcon.ID,
			"start_at": "2024-03-01T10:00",
			"end_at":   "2024-03-01T09:00",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Details, "title")
		assert.Contains(t, env.Error.Details, "end_at")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{"))
		req.Header.Set("X-Test-User", "emp-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		code, env := doJSON(t, r, http.MethodPost, "/api/v1/bookings", "emp-1", "employee", map[string]string{
			"room_id":  "nope",
			"title":    "Ghost",
			"start_at": "2024-03-01T10:00",
			"end_at":   "2024-03-01T11:00",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "ROOM_UNAVAILABLE", env.Error.Code)
	})

	t.Run("missing booking", func(t *testing.T) {
		code, env := doJSON(t, r, http.MethodGet, "/api/v1/bookings/nope", "emp-1", "employee", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("availability needs a date", func(t *testing.T) {
		code, env := doJSON(t, r, http.MethodGet, "/api/v1/rooms/"+falcon.ID+"/availability", "emp-1", "employee", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, env.Error.Details, "date")
	})
}
