package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/linkbio/internal/interface/http"
)

// ProfileModule wires profile handlers into routes under /api/profile.
// Static segments (all, active, public, search) take precedence over /:urlSlug.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Auth    gin.HandlerFunc
}

func NewProfileModule(h *handlers.ProfileHandler, auth gin.HandlerFunc) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/profile")

	auth := g.Group("/", m.Auth)
	{
		auth.POST("/create", m.Handler.Create)
		auth.PUT("/update", m.Handler.Update)
		auth.PUT("/update/:profileId", m.Handler.Update)
		auth.POST("/switch", m.Handler.Switch)
		auth.GET("/all", m.Handler.All)
		auth.GET("/active", m.Handler.Active)
		auth.GET("/profile/:profileId", m.Handler.ByID)
		auth.POST("/avatar/:profileId", m.Handler.Avatar)
	}

	g.GET("/public", m.Handler.Public)
	g.GET("/search", m.Handler.Search)
	g.GET("/public/:urlSlug", m.Handler.BySlug)
	g.GET("/:urlSlug", m.Handler.BySlug)
}
