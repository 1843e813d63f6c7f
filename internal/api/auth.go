package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const loginPath = "/api/v1/auth/login"

// TokenPair is the credential set returned by the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// Login exchanges credentials for a token pair. The login path is an
// auth-protocol path: no bearer is attached and a 401 here never triggers
// a refresh.
func (c *Client) Login(ctx context.Context, username, password, deviceID string) (TokenPair, error) {
	var pair TokenPair

	body, err := json.Marshal(loginRequest{Username: username, Password: password, DeviceID: deviceID})
	if err != nil {
		return pair, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.gw.Send(ctx, http.MethodPost, loginPath, body)
	if err != nil {
		return pair, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return pair, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return pair, fmt.Errorf("failed to decode login response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return TokenPair{}, fmt.Errorf("login response missing token pair")
	}
	return pair, nil
}
