package http

import (
	"chatfuse/internal/interfaces"
	"chatfuse/internal/usecases"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization"}
	return cfg
}

// SetupGatewayRoutes wires the account/connection API.
func SetupGatewayRoutes(r *gin.Engine, auth *usecases.AuthUsecase, lifecycle *usecases.LifecycleUsecase, connections interfaces.ConnectionStore, middleware *Middleware, production bool) {
	authHandler := NewAuthHandler(auth, production)
	connHandler := NewConnectionHandler(connections, lifecycle, production)
	qrHandler := NewQRHandler(connections, lifecycle, production)

	r.Use(cors.New(corsConfig()))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size

	// Public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/getQr", qrHandler.GetQR)
	r.GET("/qrImage", qrHandler.QRImage)
	r.GET("/publicConnection", connHandler.GetPublic)

	// Authenticated routes
	authed := r.Group("/")
	authed.Use(middleware.AuthRequired())
	authed.Use(middleware.RateLimitPerUser(5, 10))
	{
		authed.GET("/profile", authHandler.Profile)

		authed.GET("/getConnections", connHandler.List)
		authed.POST("/createConnection", connHandler.Create)
		authed.GET("/connection", connHandler.Get)
		authed.POST("/editConnection", connHandler.Edit)
		authed.GET("/stopQr", qrHandler.StopQR)

		authed.GET("/connections", connHandler.RESTList)
		authed.POST("/connections", connHandler.RESTCreate)
		authed.PUT("/connections/:id", connHandler.RESTUpdate)
		authed.DELETE("/connections/:id", connHandler.RESTDelete)
	}
}

// SetupRelayRoutes wires the webhook intake / direct send / media surface.
// Inbound media can be large, hence the bigger body cap.
func SetupRelayRoutes(r *gin.Engine, relay *usecases.RelayUsecase, media interfaces.MediaStager) {
	h := NewRelayHandler(relay, media)

	r.Use(cors.New(corsConfig()))
	r.Use(RequestSizeLimiter(100 << 20)) // 100MB, matching the provider's inline base64 payloads

	r.POST("/queue", h.Queue)
	r.POST("/sendResponse", h.SendResponse)
	r.GET("/getFile", h.GetFile)
}
