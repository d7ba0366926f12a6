package app

import (
	"fmt"
	"net/http"

	"Tasker/internal/auth"
	"Tasker/internal/cache"
	"Tasker/internal/config"
	dom "Tasker/internal/domain"
	"Tasker/internal/handlers"
	"Tasker/internal/metrics"
	"Tasker/internal/repo"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Deps are the services the routes are built on.
type Deps struct {
	Users   *service.UserService
	Tasks   *service.TaskService
	Tokens  *auth.TokenManager
	Metrics *metrics.Metrics
}

// NewDeps builds the services over the given stores. tc may be nil to disable the task cache.
func NewDeps(cfg config.Config, users repo.UserRepo, tasks repo.TaskRepo, tc *cache.TaskCache, m *metrics.Metrics) (Deps, error) {
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.Secret,
		TTL:    cfg.Auth.TokenTTL.Duration(),
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("token manager: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	return Deps{
		Users:   service.NewUserService(users, hasher, tokens),
		Tasks:   service.NewTaskService(tasks, tc, service.WithCacheObserver(m.CacheLookup)),
		Tokens:  tokens,
		Metrics: m,
	}, nil
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, d Deps) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api")
	gate := auth.NewGate(d.Tokens, d.Users, auth.WithRejectHook(d.Metrics.AuthRejected))

	authHandler := handlers.NewAuthHandler(d.Users)
	adminHandler := handlers.NewAdminHandler(d.Tasks, d.Users)
	registerUserRoutes(api.Group("/user"), gate, authHandler, adminHandler)

	taskHandler := handlers.NewTaskHandler(d.Tasks)
	registerTaskRoutes(api.Group("/todo", gate.RequireToken()), taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Tasker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerUserRoutes(api *gin.RouterGroup, gate *auth.Gate, h *handlers.AuthHandler, admin *handlers.AdminHandler) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	adminOnly := gate.RequireRole(dom.RoleAdmin)
	api.GET("/todos", adminOnly, admin.ListAll)
	api.PATCH("/users/:id/role", adminOnly, admin.SetRole)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/create", h.Create)
	api.PATCH("/edit/:title", h.Edit)
	api.DELETE("/delete/:title", h.Delete)
}
