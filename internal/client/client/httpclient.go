// Package client talks to the captionly HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/netx"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Result is the decoded JSON body of a successful call.
type Result struct {
	Raw   json.RawMessage
	Token string
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type credentials struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, userName string, password []byte) (*Result, error) {
	req, err := netx.NewJSONRequest(ctx, c.baseURL+"/api/auth/register", credentials{userName, string(password)})
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *HTTPClient) Login(ctx context.Context, userName string, password []byte) (*Result, error) {
	req, err := netx.NewJSONRequest(ctx, c.baseURL+"/api/auth/login", credentials{userName, string(password)})
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *HTTPClient) Logout(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// GenerateCaption asks for a caption without creating a post.
func (c *HTTPClient) GenerateCaption(ctx context.Context, fileName, contentType string, data []byte) (*Result, error) {
	req, err := netx.NewFileUploadRequest(ctx, c.baseURL+"/api/posts/generate-caption", "image", fileName, contentType, data)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// CreatePost uploads the image as a new post of the token's user.
func (c *HTTPClient) CreatePost(ctx context.Context, token, fileName, contentType string, data []byte) (*Result, error) {
	req, err := netx.NewFileUploadRequest(ctx, c.baseURL+"/api/posts", "image", fileName, contentType, data)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", common.AuthorizationScheme+token)
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (*Result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			apiErr.Message = e.Message
			apiErr.Detail = e.Error
		}
		return nil, apiErr
	}

	res := &Result{Raw: body}
	for _, ck := range resp.Cookies() {
		if ck.Name == common.TokenCookieName {
			res.Token = ck.Value
		}
	}
	return res, nil
}
