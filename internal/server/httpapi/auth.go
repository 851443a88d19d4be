package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/server/auth"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

func (s *HTTPServer) register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return messageJSON(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	user, token, err := s.users.Register(ctx, req.UserName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooLong):
			return messageJSON(c, http.StatusBadRequest, "password is too long")
		case errors.Is(err, common.ErrorBadRequest):
			return messageJSON(c, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, common.ErrorConflict):
			return messageJSON(c, http.StatusConflict, "user already exists")
		default:
			return s.internalError(c, "registration failed", err)
		}
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "user_id", user.ID)
	s.setTokenCookie(c, token)
	return c.JSON(http.StatusCreated, userResponse{
		Message: "User registered successfully",
		User:    user.Public(),
	})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return messageJSON(c, http.StatusBadRequest, "invalid request body")
	}

	user, token, err := s.users.Login(c.Request().Context(), req.UserName, req.Password)
	if err != nil {
		// Unknown user and wrong password look the same to the caller.
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			return messageJSON(c, http.StatusBadRequest, "invalid username or password")
		}
		return s.internalError(c, "login failed", err)
	}

	s.setTokenCookie(c, token)
	return c.JSON(http.StatusOK, userResponse{
		Message: "User logged in successfully",
		User:    user.Public(),
	})
}

func (s *HTTPServer) logout(c echo.Context) error {
	c.SetCookie(s.tokenCookie("", -1))
	return messageJSON(c, http.StatusOK, "User logged out successfully")
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

// requireAuth resolves the session token to a user id and stores it on the
// echo context.
func (s *HTTPServer) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c)
		if token == "" {
			return messageJSON(c, http.StatusUnauthorized, "unauthorized")
		}

		userID, err := s.users.VerifyToken(token)
		if err != nil {
			s.logger.Warn(c.Request().Context(), "token rejected", "error", err)
			return messageJSON(c, http.StatusUnauthorized, "unauthorized")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// tokenFromRequest reads the session cookie, falling back to a bearer
// Authorization header.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(common.TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, common.AuthorizationScheme) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.AuthorizationScheme))
	}
	return ""
}

func (s *HTTPServer) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(s.tokenCookie(token, int(s.config.TokenValidityDuration.Seconds())))
}

func (s *HTTPServer) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
