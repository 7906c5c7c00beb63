package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrdesk/internal/domain"
	"hrdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) ListActive(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomStore) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func newRouter(store *MockRoomStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(store)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_ListRooms(t *testing.T) {
	store := new(MockRoomStore)
	store.On("ListActive", mock.Anything).Return([]domain.Room{
		{ID: "r1", Name: "Falcon", IsActive: true},
		{ID: "r2", Name: "Heron", IsActive: true},
	}, nil)

	w := get(newRouter(store), "/api/v1/rooms")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Falcon"`)
	assert.Contains(t, w.Body.String(), `"name":"Heron"`)
}

func TestHandler_GetRoom(t *testing.T) {
	store := new(MockRoomStore)
	store.On("GetByID", mock.Anything, "r1").Return(&domain.Room{ID: "r1", Name: "Falcon"}, nil)
	store.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	store.On("GetByID", mock.Anything, "broken").Return(nil, errors.New("db down"))
	r := newRouter(store)

	w := get(r, "/api/v1/rooms/r1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":false`)

	w = get(r, "/api/v1/rooms/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = get(r, "/api/v1/rooms/broken")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
