package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/maasir554/fingertail/server/internal/config"
	"github.com/maasir554/fingertail/server/internal/handlers"
	"github.com/maasir554/fingertail/server/internal/services"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success":   false,
		"error":     "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// Deps is everything the routes need.
type Deps struct {
	Model    *services.ModelService
	Alerts   *services.AlertNotifier
	Gatherer prometheus.Gatherer
}

func Setup(log *zap.Logger, conf *config.Config, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'",
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	modelHandler := handlers.NewModelHandler(log, deps.Model, deps.Alerts, conf.Storage.Driver)
	analysisHandler := handlers.NewAnalysisHandler(log, deps.Model)
	chartHandler := handlers.NewChartHandler(log, deps.Model)

	limit := conf.Server.RateLimit
	if limit <= 0 {
		limit = 60
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: uint(limit),
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", modelHandler.Health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	api.Use(limiter)
	{
		api.GET("/model/info", modelHandler.Info)
		api.POST("/model/train", modelHandler.Train)
		api.POST("/model/predict", modelHandler.Predict)
		api.GET("/model/chart", chartHandler.ProfileChart)

		api.POST("/training/sessions", modelHandler.AddTrainingSession)
		api.GET("/training/status", modelHandler.TrainingStatus)

		api.POST("/features/extract", analysisHandler.ExtractFeatures)
		api.POST("/analysis/risk-assessment", analysisHandler.RiskAssessment)
		api.POST("/data/validate", analysisHandler.Validate)

		admin := api.Group("/model")
		admin.Use(AdminRequired(log, conf.Server.AdminTokenHash))
		{
			admin.POST("/retrain", modelHandler.Retrain)
			admin.POST("/reset", modelHandler.Reset)
		}
	}

	return router
}
