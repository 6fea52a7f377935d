package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thanhnp/degreechain/internal/api/handlers"
	"github.com/thanhnp/degreechain/internal/api/middleware"
)

// Options configures the router
type Options struct {
	VerificationURL string
	QRSize          int
	MineTimeout     time.Duration

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Router wraps the Gin router with handlers
type Router struct {
	engine        *gin.Engine
	degreeHandler *handlers.DegreeHandler
	chainHandler  *handlers.ChainHandler
	gatherer      prometheus.Gatherer
}

// NewRouter creates a new Router with all handlers
func NewRouter(l handlers.Ledger, opts Options) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:        gin.New(),
		degreeHandler: handlers.NewDegreeHandler(l, opts.VerificationURL, opts.QRSize),
		chainHandler:  handlers.NewChainHandler(l, opts.MineTimeout),
		gatherer:      opts.Gatherer,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.engine.Group("/api/v1")
	{
		degrees := v1.Group("/degrees")
		{
			degrees.POST("", r.degreeHandler.Submit)
			degrees.POST("/bulk", r.degreeHandler.SubmitBulk)
			degrees.GET("/verify", r.degreeHandler.Verify)
		}

		students := v1.Group("/students/:id")
		students.Use(middleware.ValidateStudentID())
		{
			students.GET("/degrees", r.degreeHandler.GetByStudent)
			students.GET("/qr", r.degreeHandler.QRCode)
		}

		chain := v1.Group("/chain")
		{
			chain.GET("", r.chainHandler.Summary)
			chain.GET("/validate", r.chainHandler.Validate)
			chain.GET("/blocks", r.chainHandler.GetBlocks)
			chain.GET("/blocks/:index", r.chainHandler.GetBlock)
		}

		v1.POST("/mine", r.chainHandler.Mine)
		v1.GET("/pending", r.chainHandler.GetPending)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
