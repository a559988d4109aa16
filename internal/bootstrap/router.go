package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpapi "github.com/figmachat/figmachat-backend/internal/api/http"
	"github.com/figmachat/figmachat-backend/internal/api/http/middleware"
	"github.com/figmachat/figmachat-backend/internal/api/http/validation"
	"github.com/figmachat/figmachat-backend/internal/auth"
	authhttp "github.com/figmachat/figmachat-backend/internal/auth/http"
	chathttp "github.com/figmachat/figmachat-backend/internal/chats/http"
	chatrepo "github.com/figmachat/figmachat-backend/internal/chats/repository"
	chatsvc "github.com/figmachat/figmachat-backend/internal/chats/service"
	"github.com/figmachat/figmachat-backend/internal/demos/events"
	demohttp "github.com/figmachat/figmachat-backend/internal/demos/http"
	demorepo "github.com/figmachat/figmachat-backend/internal/demos/repository"
	demosvc "github.com/figmachat/figmachat-backend/internal/demos/service"
	"github.com/figmachat/figmachat-backend/internal/figma"
	"github.com/figmachat/figmachat-backend/internal/llm"
	"github.com/figmachat/figmachat-backend/internal/observability"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	projecthttp "github.com/figmachat/figmachat-backend/internal/projects/http"
	projectrepo "github.com/figmachat/figmachat-backend/internal/projects/repository"
	projectsvc "github.com/figmachat/figmachat-backend/internal/projects/service"
	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
	"github.com/figmachat/figmachat-backend/internal/users"
)

// Database is satisfied by *pgxpool.Pool and by pgxmock pools.
type Database interface {
	postgres.DBTX
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          Database
	Redis       *goredis.Client // optional
	Log         *logger.Logger

	AI    llm.Gateway
	Figma figma.Fetcher // optional

	// Verifier may be nil when only the development header is accepted.
	Verifier  auth.TokenVerifier
	DevHeader bool

	CORSOrigins       []string
	MessageRatePerMin int
	MessageRateBurst  int

	DemoMaxConcurrency int
	DemoTimeout        time.Duration

	Metrics        *observability.Metrics
	MetricsHandler http.Handler // optional, mounted at /metrics
	Tracing        bool
}

// Router is the assembled HTTP surface plus the background work it owns.
type Router struct {
	Engine   *gin.Engine
	pipeline *chatsvc.MessagePipeline
	demos    *demosvc.Runner
}

// Drain waits for in-flight message streams to persist, then for demo jobs
// to finish. A finishing stream may still enqueue a demo job, so the runner
// closes last.
func (r *Router) Drain(ctx context.Context) error {
	return errors.Join(r.pipeline.Drain(ctx), r.demos.Close(ctx))
}

func BuildRouter(dep RouterDeps) *Router {
	log := dep.Log
	if log == nil {
		log = logger.Nop()
	}
	validation.Register()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(dep.CORSOrigins))
	if dep.Tracing {
		r.Use(otelgin.Middleware(dep.ServiceName))
	}
	r.Use(middleware.RequestIDMiddleware(log))

	var redisPinger httpapi.Pinger
	if dep.Redis != nil {
		redisPinger = httpapi.PingFunc(func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	}
	var dbPinger httpapi.Pinger
	if dep.DB != nil {
		dbPinger = dep.DB
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dbPinger, redisPinger).RegisterRoutes(r)
	if dep.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(dep.MetricsHandler))
	}

	userRepo := users.NewRepo(dep.DB)
	projectRepo := projectrepo.NewProjectRepository(dep.DB)
	chatRepo := chatrepo.NewChatRepository(dep.DB)
	demoRepo := demorepo.NewDemoRepository(dep.DB)

	var publisher demosvc.Publisher
	if dep.Redis != nil {
		publisher = events.NewRedisPublisher(dep.Redis)
	}

	projectService := projectsvc.NewProjectService(projectRepo, dep.Figma, log)
	chatService := chatsvc.NewChatService(chatRepo, projectRepo, dep.AI, log)
	demoService := demosvc.NewDemoService(demoRepo, dep.AI, publisher, log)
	runner := demosvc.NewRunner(demoService, dep.DemoMaxConcurrency, dep.DemoTimeout, dep.Metrics, log)
	pipeline := chatsvc.NewMessagePipeline(chatRepo, dep.AI, runner, dep.Metrics, log)

	api := r.Group("/api/v1")
	api.Use(auth.RequireUser(auth.Options{
		Verifier:  dep.Verifier,
		Users:     userRepo,
		DevHeader: dep.DevHeader,
		Log:       log,
	}))

	authhttp.New(userRepo).Register(api)

	projectsGroup := api.Group("/projects")
	projecthttp.New(projectService).Register(projectsGroup)

	sendLimit := middleware.NewRateLimiter(dep.MessageRatePerMin, dep.MessageRateBurst, auth.UserFirebaseUID)
	chathttp.New(chatService, pipeline, log).
		Register(projectsGroup.Group("/:project_id/chats"), sendLimit.Middleware())

	demohttp.New(demoService).Register(projectsGroup.Group("/:project_id/chats/:chat_id"))

	return &Router{Engine: r, pipeline: pipeline, demos: runner}
}

// corsMiddleware allows every origin when origins is empty or contains "*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "X-User-Id", "X-User-Email"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}

	cfg.AllowAllOrigins = len(origins) == 0
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
