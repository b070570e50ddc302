package http

import (
	"errors"
	"net/http"

	"chatfuse/internal/entities"
	"chatfuse/internal/usecases"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth       *usecases.AuthUsecase
	production bool
}

func NewAuthHandler(auth *usecases.AuthUsecase, production bool) *AuthHandler {
	return &AuthHandler{auth: auth, production: production}
}

// errorDetail exposes the underlying error outside production mode.
func (h *AuthHandler) errorDetail(err error) interface{} {
	if h.production {
		return nil
	}
	return err.Error()
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email y contraseña son requeridos",
		})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, entities.ErrEmailRegistered) || errors.Is(err, entities.ErrPhoneRegistered) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		zap.S().Errorf("register %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error al registrar usuario",
			"error":   h.errorDetail(err),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Usuario registrado exitosamente",
		"token":   token,
		"user":    user.Public(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == "" && req.Phone == "") || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email/teléfono y contraseña son requeridos",
		})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Usuario no encontrado",
			})
		case errors.Is(err, entities.ErrInvalidPassword):
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Contraseña incorrecta",
			})
		default:
			zap.S().Errorf("login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error al iniciar sesión",
				"error":   h.errorDetail(err),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login exitoso",
		"token":   token,
		"user":    user.Public(),
	})
}

// Profile echoes the identity carried by the token.
func (h *AuthHandler) Profile(c *gin.Context) {
	email, _ := c.Get("email")
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    userID(c),
			"email": email,
		},
	})
}
