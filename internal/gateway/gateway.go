// Package gateway wraps outbound REST calls with bearer-token attachment,
// 401 detection and single-flight token refresh.
package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	// Auth-protocol paths are exempt from bearer attachment and from the
	// 401→refresh trigger, so a failing refresh can never loop.
	authPathPrefix = "/api/v1/auth/"

	// RefreshPath is the token-refresh endpoint.
	RefreshPath = "/api/v1/auth/refresh"
)

// Gateway issues authenticated requests against the backend. The refresh
// protocol is single-flight: concurrent 401s share one in-flight refresh
// call, and the shared slot is forgotten the instant the call settles.
type Gateway struct {
	baseURL string
	client  *http.Client
	session *session.Session
	group   singleflight.Group
	log     logging.Logger
}

func New(baseURL string, client *http.Client, sess *session.Session, log logging.Logger) *Gateway {
	if client == nil {
		client = &http.Client{}
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		session: sess,
		log:     log,
	}
}

// Send issues an authenticated JSON request. The response is returned as-is
// for any status except a 401 on a non-auth path, which triggers one
// refresh+retry cycle (see doSend). Refresh errors are swallowed: Send never
// fails because a refresh failed.
func (g *Gateway) Send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	contentType := ""
	if len(body) > 0 {
		contentType = "application/json"
	}
	return g.doSend(ctx, method, path, contentType, body)
}

// Upload issues an authenticated request with a binary payload (KML import,
// photo attachments). contentType may be empty to leave the header unset;
// the JSON content type is never forced onto binary bodies.
func (g *Gateway) Upload(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	return g.doSend(ctx, method, path, contentType, body)
}

func (g *Gateway) doSend(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	if tok, _ := g.session.Tokens(); tok != "" && !isAuthPath(path) && tokenExpired(tok) {
		// the access token is known-stale; refreshing now saves the
		// guaranteed 401 round trip. Failure falls through to the
		// reactive path below.
		_ = g.refresh(ctx)
	}

	resp, err := g.issue(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(path) {
		return resp, nil
	}

	if !g.refresh(ctx) {
		_ = g.session.Invalidate(ctx)
		return resp, nil // the original 401, unmodified
	}

	drain(resp)
	retry, err := g.issue(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		_ = g.session.Invalidate(ctx)
	}
	return retry, nil
}

func (g *Gateway) issue(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, _ := g.session.Tokens(); tok != "" && !isAuthPath(path) {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return g.client.Do(req)
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, authPathPrefix)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
