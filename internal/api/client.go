// Package api is the typed REST client for the farm-management backend.
// Every collection shares one path scheme and one response envelope:
// list calls return { "data": [...] }, single-entity calls { "data": {...} },
// deletes return no body.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/openpaddock/muster/internal/gateway"
	"github.com/openpaddock/muster/internal/store"
)

type Client struct {
	gw *gateway.Gateway
}

func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

type listEnvelope struct {
	Data []store.Record `json:"data"`
}

type itemEnvelope struct {
	Data store.Record `json:"data"`
}

func collectionPath(entity string) string {
	return "/api/v1/" + entity
}

func itemPath(entity, id string) string {
	return "/api/v1/" + entity + "/" + id
}

// List fetches every record of a collection.
func (c *Client) List(ctx context.Context, entity string) ([]store.Record, error) {
	resp, err := c.gw.Send(ctx, http.MethodGet, collectionPath(entity), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", entity, err)
	}
	return env.Data, nil
}

// Create posts a new record and returns the server's copy.
func (c *Client) Create(ctx context.Context, entity string, payload map[string]any) (store.Record, error) {
	return c.sendItem(ctx, http.MethodPost, collectionPath(entity), payload)
}

// Update patches an existing record and returns the server's copy.
func (c *Client) Update(ctx context.Context, entity, id string, payload map[string]any) (store.Record, error) {
	return c.sendItem(ctx, http.MethodPut, itemPath(entity, id), payload)
}

// Delete removes a record. An empty 2xx (204-equivalent) is success.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	resp, err := c.gw.Send(ctx, http.MethodDelete, itemPath(entity, id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) sendItem(ctx context.Context, method, path string, payload map[string]any) (store.Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := c.gw.Send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}

// checkStatus converts a non-2xx response into a typed *Error carrying the
// server's message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	msg := resp.Status
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Detail != "" {
			msg = detail.Detail
		} else if detail.Message != "" {
			msg = detail.Message
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
