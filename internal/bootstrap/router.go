package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/codeprogress/codeprogress-backend/internal/api/http"
	"github.com/codeprogress/codeprogress-backend/internal/api/http/middleware"
	"github.com/codeprogress/codeprogress-backend/internal/auth"
	"github.com/codeprogress/codeprogress-backend/internal/profiles"
	"github.com/codeprogress/codeprogress-backend/internal/progress"
	"github.com/codeprogress/codeprogress-backend/internal/projects"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	SQLDB          *sql.DB
	Redis          *redis.Client
	Identity       auth.IdentityClient
	Verifier       auth.TokenVerifier
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	profileRepo := profiles.NewRepo(dep.SQLDB)
	projectRepo := projects.NewRepo(dep.DB)
	logRepo := progress.NewRepo(dep.DB)
	sessions := auth.NewSessionStore(dep.Redis)

	requireUser := auth.RequireUser(dep.Verifier, sessions, profileRepo)
	optionalUser := auth.OptionalUser(dep.Verifier, sessions)

	authSvc := auth.NewService(dep.Identity, sessions, profileRepo)
	auth.Register(api.Group("/auth"), authSvc, requireUser)

	projectsGroup := api.Group("/projects")
	projects.Register(projectsGroup, projectRepo, requireUser, optionalUser)
	progress.RegisterProjectRoutes(projectsGroup, logRepo, projectRepo, requireUser, optionalUser)
	progress.Register(api, logRepo, projectRepo, requireUser)

	return r
}
