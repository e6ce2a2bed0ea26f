package main

import (
	"log/slog"

	"dsa-tracker/internal/httpapi"
	"dsa-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// newRouter builds the gin engine with middleware and routes.
// Keep this file free of business logic. Handlers delegate to internal/problems.
func newRouter(log *slog.Logger, cors httpapi.CORSConfig, h httpapi.Handlers) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(httpapi.CORSMiddleware(cors))
	r.Use(httpapi.VersionHeader())

	registerRoutes(r, h)

	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)
	return r
}

func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)

	problems := r.Group("/problems")
	{
		problems.GET("", h.ListProblems)
		problems.POST("", h.CreateProblem)
		problems.GET("/:problem_id", h.GetProblem)
		problems.DELETE("/:problem_id", h.DeleteProblem)
	}
}
