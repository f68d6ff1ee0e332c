package server

import (
	"github.com/gin-gonic/gin"

	"consult-backend/internal/shared/server/middleware"
	"consult-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	response := gin.H{
		"userId":  middleware.UserIDFromContext(c),
		"isGuest": middleware.IsGuest(c),
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	respond.OK(c, response)
}
