package http

import (
	"net/http"
	"strings"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"chatfuse/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	connections interfaces.ConnectionStore
	lifecycle   *usecases.LifecycleUsecase
	production  bool
}

func NewConnectionHandler(connections interfaces.ConnectionStore, lifecycle *usecases.LifecycleUsecase, production bool) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		lifecycle:   lifecycle,
		production:  production,
	}
}

func (h *ConnectionHandler) errorDetail(err error) interface{} {
	if h.production {
		return nil
	}
	return err.Error()
}

// fetchOwned loads a connection and enforces ownership. Writes the error
// response and returns nil when the caller should stop.
func (h *ConnectionHandler) fetchOwned(c *gin.Context, id, forbiddenMsg string) *entities.Connection {
	conn, err := h.connections.GetByID(c.Request.Context(), id)
	if err != nil {
		zap.S().Errorf("get connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al obtener conexión",
			"error":   h.errorDetail(err),
		})
		return nil
	}
	if conn == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Conexión no encontrada",
		})
		return nil
	}
	if conn.UserID != userID(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": forbiddenMsg,
		})
		return nil
	}
	return conn
}

// connectionView merges the stored row with live instance data for the
// enriched single-connection responses.
func connectionView(conn *entities.Connection, inst *entities.Instance) gin.H {
	qrStatus := entities.InstanceClose
	var profilePic, phoneNumber interface{}
	if inst != nil {
		qrStatus = inst.ConnectionStatus
		if inst.ProfilePicURL != "" {
			profilePic = inst.ProfilePicURL
		}
		if n := inst.PhoneNumber(); n != "" {
			phoneNumber = n
		}
	}

	return gin.H{
		"id":                conn.ID,
		"userid":            conn.UserID,
		"name":              conn.Name,
		"type":              conn.Type,
		"status":            conn.Status,
		"webhook":           conn.Webhook,
		"qrPrivacy":         conn.QRPrivacy,
		"customTitle":       conn.CustomTitle,
		"customLogo":        conn.CustomLogo,
		"customDescription": conn.CustomDescription,
		"qrCode":            nil,
		"qrStatus":          qrStatus,
		"profilePicUrl":     profilePic,
		"phoneNumber":       phoneNumber,
	}
}

// List answers GET /getConnections with the summary projection.
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.connections.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		zap.S().Errorf("list connections for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al obtener conexiones",
			"error":   h.errorDetail(err),
		})
		return
	}

	if len(conns) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "No se encontraron conexiones para este usuario",
			"connections": []entities.ConnectionSummary{},
		})
		return
	}

	summaries := make([]entities.ConnectionSummary, 0, len(conns))
	for _, conn := range conns {
		summaries = append(summaries, entities.ConnectionSummary{
			ID:     conn.ID,
			Name:   conn.Name,
			Type:   conn.Type,
			Status: conn.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"connections": summaries,
	})
}

// Create answers POST /createConnection: inserts the row and spins up the
// provider instance under the connection id.
func (h *ConnectionHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Nombre y tipo son requeridos",
		})
		return
	}

	if !entities.ValidConnectionType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Tipo de conexión inválido. Valores permitidos: " + strings.Join(entities.ConnectionTypes, ", "),
		})
		return
	}

	conn, err := h.lifecycle.Create(c.Request.Context(), userID(c), req.Name, req.Type)
	if err != nil {
		zap.S().Errorf("create connection for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al crear la instancia de trabajo",
			"error":   h.errorDetail(err),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Conexión creada exitosamente",
		"connection": gin.H{
			"id":        conn.ID,
			"name":      conn.Name,
			"type":      conn.Type,
			"status":    conn.Status,
			"qrPrivacy": conn.QRPrivacy,
		},
	})
}

// Get answers GET /connection?id= for the owner, enriched with live provider
// state.
func (h *ConnectionHandler) Get(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "ID de conexión requerido",
		})
		return
	}

	conn := h.fetchOwned(c, id, "No tienes permiso para acceder a esta conexión")
	if conn == nil {
		return
	}

	inst := h.lifecycle.InstanceInfo(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"connection": connectionView(conn, inst),
	})
}

// GetPublic answers GET /publicConnection?id= with the same enrichment but no
// owner check, for embeddable connect pages.
func (h *ConnectionHandler) GetPublic(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "ID de conexión requerido",
		})
		return
	}

	conn, err := h.connections.GetByID(c.Request.Context(), id)
	if err != nil {
		zap.S().Errorf("get public connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al obtener conexión",
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

	inst := h.lifecycle.InstanceInfo(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"connection": connectionView(conn, inst),
	})
}

// Edit answers POST /editConnection?id=. An empty update set is rejected
// before any write.
func (h *ConnectionHandler) Edit(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "ID de conexión requerido",
		})
		return
	}

	conn := h.fetchOwned(c, id, "No tienes permiso para editar esta conexión")
	if conn == nil {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		body = nil
	}
	fields := collectConnectionFields(body)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No se proporcionaron campos para actualizar",
		})
		return
	}
	if msg := validateConnectionFields(fields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msg,
		})
		return
	}

	updated, err := h.connections.Update(c.Request.Context(), id, fields)
	if err != nil {
		zap.S().Errorf("update connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al editar conexión",
			"error":   h.errorDetail(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Conexión actualizada exitosamente",
		"connection": updated,
	})
}

// RESTList answers GET /connections with full rows under a data envelope.
func (h *ConnectionHandler) RESTList(c *gin.Context) {
	conns, err := h.connections.ListByUser(c.Request.Context(), userID(c))
	if err != nil {
		zap.S().Errorf("list connections for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al obtener conexiones",
		})
		return
	}
	if conns == nil {
		conns = []entities.Connection{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conns,
	})
}

// RESTCreate answers POST /connections: full field set, row only, no provider
// instance.
func (h *ConnectionHandler) RESTCreate(c *gin.Context) {
	var req struct {
		Name              string `json:"name"`
		Type              string `json:"type"`
		Webhook           string `json:"webhook"`
		QRPrivacy         string `json:"qrPrivacy"`
		CustomTitle       string `json:"customTitle"`
		CustomLogo        string `json:"customLogo"`
		CustomDescription string `json:"customDescription"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Nombre y tipo son requeridos",
		})
		return
	}

	conn := &entities.Connection{
		ID:                uuid.NewString(),
		UserID:            userID(c),
		Name:              req.Name,
		Type:              req.Type,
		Status:            "inactive",
		Webhook:           req.Webhook,
		QRPrivacy:         req.QRPrivacy,
		CustomTitle:       req.CustomTitle,
		CustomLogo:        req.CustomLogo,
		CustomDescription: req.CustomDescription,
	}
	if err := h.connections.Insert(c.Request.Context(), conn); err != nil {
		zap.S().Errorf("insert connection for user %d: %v", userID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al crear conexión",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Conexión creada exitosamente",
		"data":    conn,
	})
}

// RESTUpdate answers PUT /connections/:id.
func (h *ConnectionHandler) RESTUpdate(c *gin.Context) {
	id := c.Param("id")

	conn := h.fetchOwned(c, id, "No tienes permiso para modificar esta conexión")
	if conn == nil {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		body = nil
	}
	fields := collectConnectionFields(body)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No se proporcionaron campos para actualizar",
		})
		return
	}
	if msg := validateConnectionFields(fields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msg,
		})
		return
	}

	updated, err := h.connections.Update(c.Request.Context(), id, fields)
	if err != nil {
		zap.S().Errorf("update connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al actualizar conexión",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Conexión actualizada exitosamente",
		"data":    updated,
	})
}

// RESTDelete answers DELETE /connections/:id. Removes the row only; the
// provider instance, if any, is torn down separately.
func (h *ConnectionHandler) RESTDelete(c *gin.Context) {
	id := c.Param("id")

	conn := h.fetchOwned(c, id, "No tienes permiso para eliminar esta conexión")
	if conn == nil {
		return
	}

	if err := h.connections.Delete(c.Request.Context(), id); err != nil {
		zap.S().Errorf("delete connection %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al eliminar conexión",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Conexión eliminada exitosamente",
	})
}
