package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
)

// ClientHandler implements dynamic client registration (RFC 7591).
type ClientHandler struct {
	registrationService *services.RegistrationService
	metrics             metrics.Recorder
}

func NewClientHandler(
	rs *services.RegistrationService,
	recorder metrics.Recorder,
) *ClientHandler {
	return &ClientHandler{
		registrationService: rs,
		metrics:             recorder,
	}
}

// Register handles POST /oauth2/register. On success the full client record
// is returned with 201 Created; a missing or empty redirect_uris yields
// invalid_client_metadata.
func (h *ClientHandler) Register(c *gin.Context) {
	var meta services.ClientMetadata
	if err := c.ShouldBindJSON(&meta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             errInvalidClientMetadata,
			"error_description": "request body must be a JSON client metadata document",
		})
		return
	}

	client, err := h.registrationService.Register(c.Request.Context(), &meta)
	if err != nil {
		if errors.Is(err, services.ErrInvalidClientMetadata) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             errInvalidClientMetadata,
				"error_description": err.Error(),
			})
			return
		}
		log.Printf("client registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             errServerError,
			"error_description": err.Error(),
		})
		return
	}

	h.metrics.RecordClientRegistered()
	log.Printf("registered new client: %s (%s)", client.ClientID, client.DisplayName())

	c.JSON(http.StatusCreated, client)
}
