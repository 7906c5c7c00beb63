package catalog

import (
	"errors"
	"log"
	"net/http"

	"hrdesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms", h.ListRooms)
	rg.GET("/rooms/:id", h.GetRoom)
}

// ListRooms handles GET /api/v1/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListActiveRooms(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.service.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, ErrRoomNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room not found")
		return
	}
	log.Printf("catalog_error path=%s error=%q", c.Request.URL.Path, err.Error())
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
