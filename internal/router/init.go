package router

import (
	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/internal/container"
	"github.com/oksasatya/linkbio/internal/infrastructure/session"
	handlers "github.com/oksasatya/linkbio/internal/interface/http"
	"github.com/oksasatya/linkbio/internal/interface/middleware"
	"github.com/oksasatya/linkbio/internal/router/modules"
	"github.com/oksasatya/linkbio/pkg/helpers"
)

// buildDeps assembles service dependencies from the container. Optional
// components are only assigned when present so the interfaces stay nil.
func buildDeps() (app.Deps, *session.RedisStore) {
	cfg := container.GetConfig()
	d := app.Deps{
		Repo:       container.GetUserRepo(),
		Hasher:     helpers.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     container.GetJWT(),
		Logger:     container.GetLogger(),
		BaseURL:    cfg.BaseURL,
		SessionTTL: cfg.JWTTTL,
	}

	var sessions *session.RedisStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = session.NewRedisStore(rdb)
		d.Sessions = sessions
	}
	if idx := container.GetProfileIndex(); idx != nil {
		d.Index = idx
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		d.Events = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Avatars = &helpers.GCSAvatarStore{Client: gcs, Bucket: cfg.GCSBucket}
	}
	return d, sessions
}

func authMiddleware(sessions *session.RedisStore) gin.HandlerFunc {
	if sessions == nil {
		return middleware.Auth(container.GetJWT(), nil)
	}
	return middleware.Auth(container.GetJWT(), sessions)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps, sessions := buildDeps()
	auth := authMiddleware(sessions)
	logger := container.GetLogger()

	accounts := app.NewAccountService(deps)
	profiles := app.NewProfileService(deps)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(deps.Repo)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(accounts, logger), auth))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(profiles, logger), auth))
}
