package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	_ "vidtrack/docs"
	"vidtrack/internal/config"
	"vidtrack/internal/model"
	"vidtrack/internal/service"
	"vidtrack/pkg/log"
)

type JobService interface {
	RequestUpload(ctx context.Context, filename, contentType string) (*service.UploadTicket, error)
	SubmitJob(ctx context.Context, userId, folder, filename string) (*model.JobRecord, error)
	GetJob(ctx context.Context, jobId string) (*model.JobRecord, error)
	VideoURL(ctx context.Context, jobId string) (*service.PresignedURL, error)
	ResultsURL(ctx context.Context, jobId string) (*service.PresignedURL, error)
	Results(ctx context.Context, jobId string) (*model.ResultsDocument, error)
	OnCompletion(ctx context.Context, jobId string, status model.JobStatus) error
	ListJobs(ctx context.Context, userId string, cursor *model.PaginationCursor) ([]*model.JobRecord, *model.PaginationCursor, error)
	DeleteJob(ctx context.Context, jobId string) error
}

type Server struct {
	conf       *config.Config
	jobs       JobService
	registry   *prometheus.Registry
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, jobs JobService, registry *prometheus.Registry) *Server {
	return &Server{
		conf:     conf,
		jobs:     jobs,
		registry: registry,
		logger:   log.GetLogger(ctx).WithField("component", "server"),
	}
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Set(log.CtxRequestId, requestId)
		c.Header(log.HttpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c).Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		s.logger.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		s.logger.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		s.logger.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	Success bool `json:"success"`
	// 错误信息
	Message string `json:"message"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}

// writeServiceError maps job service errors onto HTTP status codes.
func (s *Server) writeServiceError(c *gin.Context, err error) {
	code := http.StatusBadRequest
	switch {
	case goerrors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
	case goerrors.Is(err, service.ErrInvalidState):
		code = http.StatusConflict
	}
	if goerrors.Is(err, service.ErrUpstream) {
		log.GetLogger(c).WithError(err).Error("job service failure")
	}
	s.writeError(c, code, err)
}

// validFilename accepts a single path segment.
func validFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\") && path.Clean(name) == name
}

func validVideoType(fl validator.FieldLevel) bool {
	ct := fl.Field().String()
	return strings.HasPrefix(ct, "video/") || ct == "application/octet-stream"
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("filename", validFilename)
		_ = v.RegisterValidation("videotype", validVideoType)
	}
}
