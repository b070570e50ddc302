package http

import (
	"errors"
	"net/http"
	"os"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"chatfuse/internal/usecases"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RelayHandler struct {
	relay *usecases.RelayUsecase
	media interfaces.MediaStager
}

func NewRelayHandler(relay *usecases.RelayUsecase, media interfaces.MediaStager) *RelayHandler {
	return &RelayHandler{relay: relay, media: media}
}

// Queue answers POST /queue, the provider's inbound webhook. Downstream
// failures never propagate back to the provider.
func (h *RelayHandler) Queue(c *gin.Context) {
	var payload entities.InboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido"})
		return
	}

	h.relay.HandleInbound(c.Request.Context(), &payload)

	c.JSON(http.StatusOK, gin.H{"message": "Mensaje procesado correctamente"})
}

// SendResponse answers POST /sendResponse: explicit outbound dispatch through
// the provider.
func (h *RelayHandler) SendResponse(c *gin.Context) {
	var env entities.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de la solicitud inválido"})
		return
	}

	data, err := h.relay.SendDirect(c.Request.Context(), &env)
	if err != nil {
		var verr *usecases.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		zap.S().Errorf("send response for %s: %v", env.TargetID(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Respuesta enviada correctamente",
		"data":    data,
	})
}

// GetFile answers GET /getFile?fileName= with staged media bytes.
func (h *RelayHandler) GetFile(c *gin.Context) {
	fileName := c.Query("fileName")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El parámetro 'fileName' es requerido"})
		return
	}

	path, err := h.media.Path(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Archivo no encontrado"})
			return
		}
		zap.S().Errorf("resolve staged file %s: %v", fileName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al enviar el archivo"})
		return
	}

	c.File(path)
}
