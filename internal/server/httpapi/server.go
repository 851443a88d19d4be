// Package httpapi exposes the user and post services over HTTP using echo.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/logging"
	"github.com/dmitrijs2005/captionly/internal/server/config"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// UserService is the authentication surface used by the handlers.
type UserService interface {
	Register(ctx context.Context, userName, password string) (*models.User, string, error)
	Login(ctx context.Context, userName, password string) (*models.User, string, error)
	VerifyToken(token string) (string, error)
}

// PostService is the post surface used by the handlers.
type PostService interface {
	CreatePost(ctx context.Context, authorID string, img *models.UploadedImage) (*models.Post, error)
	GenerateCaption(ctx context.Context, img *models.UploadedImage) (string, error)
}

type HTTPServer struct {
	address string
	users   UserService
	posts   PostService
	logger  logging.Logger
	config  *config.Config
	echo    *echo.Echo
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, ps PostService) *HTTPServer {
	s := &HTTPServer{
		address: cfg.EndpointAddrHTTP,
		users:   us,
		posts:   ps,
		logger:  l.With("module", "http_server"),
		config:  cfg,
	}
	s.echo = s.newRouter()
	return s
}

// Handler returns the routed echo instance.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

func (s *HTTPServer) newRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Minute
	e.Server.WriteTimeout = 2 * time.Minute

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: requestID,
	}))
	e.Use(s.requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.config.CORSAllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !slices.Contains(s.config.CORSAllowOrigins, "*"),
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", s.config.MaxUploadSize)))

	api := e.Group("/api")
	api.GET("/health", s.health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)

	postsGroup := api.Group("/posts")
	postsGroup.POST("", s.createPost, s.requireAuth)
	postsGroup.POST("/generate-caption", s.generateCaption)

	return e
}

func (s *HTTPServer) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Error(ctx, "request failed", append(args, "error", v.Error)...)
				return nil
			}
			s.logger.Info(ctx, "request", args...)
			return nil
		},
	})
}

func requestID() string {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return ""
	}
	return id
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(sctx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
