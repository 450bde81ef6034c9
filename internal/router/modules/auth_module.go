package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/linkbio/internal/interface/http"
)

// AuthModule wires account handlers into routes.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected: POST /api/auth/logout, DELETE /api/auth/delete, DELETE /api/auth/delete-with-password
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Handler.Register)
	g.POST("/login", m.Handler.Login)

	auth := g.Group("/", m.Auth)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.DELETE("/delete", m.Handler.Delete)
		auth.DELETE("/delete-with-password", m.Handler.DeleteWithPassword)
	}
}
