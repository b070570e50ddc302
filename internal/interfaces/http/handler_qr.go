package http

import (
	"errors"
	"net/http"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"chatfuse/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type QRHandler struct {
	connections interfaces.ConnectionStore
	lifecycle   *usecases.LifecycleUsecase
	production  bool
}

func NewQRHandler(connections interfaces.ConnectionStore, lifecycle *usecases.LifecycleUsecase, production bool) *QRHandler {
	return &QRHandler{
		connections: connections,
		lifecycle:   lifecycle,
		production:  production,
	}
}

func (h *QRHandler) errorDetail(err error) interface{} {
	if h.production {
		return nil
	}
	return err.Error()
}

// GetQR answers GET /getQr?id=&connect=. Public: polling clients on connect
// pages hit this without a token. A missing provider instance is reported
// inside a 200 so those clients keep polling.
func (h *QRHandler) GetQR(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el parámetro id"})
		return
	}
	connect := c.Query("connect") == "true"

	result, err := h.lifecycle.GetQR(c.Request.Context(), id, connect)
	if err != nil {
		zap.S().Errorf("get QR for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// StopQR answers GET /stopQr?id=: owner-only teardown and recreate of the
// provider instance.
func (h *QRHandler) StopQR(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Se requiere el parámetro id",
		})
		return
	}

	conn, err := h.connections.GetByID(c.Request.Context(), id)
	if err != nil {
		zap.S().Errorf("get connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al detener QR",
			"error":   h.errorDetail(err),
		})
		return
	}
	if conn == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Conexión no encontrada",
		})
		return
	}
	if conn.UserID != userID(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "No tienes permiso para detener esta conexión",
		})
		return
	}

	if err := h.lifecycle.StopQR(c.Request.Context(), id); err != nil {
		zap.S().Errorf("stop QR for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al detener QR",
			"error":   h.errorDetail(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Conexión detenida y recreada exitosamente",
	})
}

// QRImage answers GET /qrImage?id= with the current pairing code rendered as a
// PNG, for direct embedding in connect pages.
func (h *QRHandler) QRImage(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el parámetro id"})
		return
	}

	code, err := h.lifecycle.QRCode(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrInstanceNotFound) || errors.Is(err, usecases.ErrNoQRPending) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No hay código QR pendiente"})
			return
		}
		zap.S().Errorf("QR image for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		zap.S().Errorf("encode QR for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
