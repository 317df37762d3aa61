package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	// handlers pass *gin.Context on as a context.Context
	router.ContextWithFallback = true
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Message: "not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	if s.registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	// pushed by the analysis service, not by users
	v1Notify := apiV1.Group("")
	if s.conf.NotificationSecret != "" || s.conf.JwtSecret != "" {
		v1Notify.Use(NeedNotificationSecret(s.conf.NotificationSecret))
	}
	v1Notify.POST("/notifications", s.handleNotification)

	v1Authed := apiV1.Group("")
	if s.conf.JwtSecret != "" {
		v1Authed.Use(TrySetUserToContext(s.conf.JwtSecret), NeedAuth())
	}

	v1Authed.GET("/upload_url", s.handleUploadURL)
	v1Authed.POST("/start_analysis", s.handleStartAnalysis)
	v1Authed.GET("/user/:user_id/jobs", s.handleListJobs)

	v1Job := v1Authed.Group("/job/:job_id")
	v1Job.Use(s.SetJobToContext())
	v1Job.GET("", s.handleGetJob)
	v1Job.DELETE("", s.handleDeleteJob)
	v1Job.GET("/video_url", s.handleVideoURL)
	v1Job.GET("/results_url", s.handleResultsURL)
	v1Job.GET("/results", s.handleResults)
}
