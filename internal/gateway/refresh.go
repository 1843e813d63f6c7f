package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refresh runs the single-flight refresh protocol and reports success. If a
// refresh is already in flight, the caller awaits that same call instead of
// starting a second one; the group forgets the key the moment the shared
// call settles, so a later wave of 401s starts a fresh refresh.
func (g *Gateway) refresh(ctx context.Context) bool {
	v, _, _ := g.group.Do("refresh", func() (any, error) {
		// the shared call must not die with the first canceled caller
		return g.doRefresh(context.WithoutCancel(ctx)), nil
	})
	ok, _ := v.(bool)
	return ok
}

// doRefresh exchanges the stored refresh token + device id for a new token
// pair. Any failure (network error, non-2xx, malformed body, missing
// token) counts as refresh failure; errors are never propagated out of the
// gateway's send path.
func (g *Gateway) doRefresh(ctx context.Context) bool {
	_, refreshToken := g.session.Tokens()
	if refreshToken == "" {
		return false
	}

	body, err := json.Marshal(refreshRequest{
		RefreshToken: refreshToken,
		DeviceID:     g.session.DeviceID(),
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn(ctx, "token refresh failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.log.Warn(ctx, "token refresh rejected", "status", resp.Status)
		return false
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		g.log.Warn(ctx, "token refresh returned malformed body", "error", err)
		return false
	}
	if rr.AccessToken == "" || rr.RefreshToken == "" {
		g.log.Warn(ctx, "token refresh returned incomplete token pair")
		return false
	}

	if err := g.session.SetTokens(ctx, rr.AccessToken, rr.RefreshToken); err != nil {
		g.log.Error(ctx, "failed to persist refreshed tokens", "error", err)
		return false
	}
	return true
}

// tokenExpired inspects the access token's exp claim without verifying the
// signature (verification is the server's job). Opaque non-JWT tokens are
// treated as not expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
