package container

import (
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/linkbio/config"
	repo "github.com/oksasatya/linkbio/internal/domain/repository"
	"github.com/oksasatya/linkbio/internal/infrastructure/search"
	"github.com/oksasatya/linkbio/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional components
// (redis, search, rabbit, gcs) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	userRepo    repo.UserRepository
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	rabbitPub    *helpers.RabbitPublisher
	profileIndex *search.ProfileIndex
)

func SetConfig(c *config.Config)             { cfg = c }
func GetConfig() *config.Config              { return cfg }
func SetLogger(l *logrus.Logger)             { logger = l }
func SetUserRepo(r repo.UserRepository)      { userRepo = r }
func GetUserRepo() repo.UserRepository       { return userRepo }
func SetRedis(r *redis.Client)               { redisClient = r }
func GetRedis() *redis.Client                { return redisClient }
func SetGCS(s *storage.Client)               { gcsClient = s }
func GetGCS() *storage.Client                { return gcsClient }
func SetJWT(m *helpers.JWTManager)           { jwtManager = m }
func SetProfileIndex(p *search.ProfileIndex) { profileIndex = p }
func GetProfileIndex() *search.ProfileIndex  { return profileIndex }

func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}

func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	if cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
		return jwtManager
	}
	return helpers.NewJWTManager("devsecret", 0)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
