// Package netx classifies transport failures and probes server reachability.
package netx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/openpaddock/muster/internal/common"
)

// Classifier reports whether an error should be treated as connectivity-absent:
// caused by lack of network reachability rather than a server-side rejection.
type Classifier func(err error) bool

// transportPhrases are message fragments of known transport-level failures.
// This part of the classification is heuristic by design: it may misclassify
// an unusual server error as a connectivity failure, which is an accepted
// imprecision, not a bug to tighten.
var transportPhrases = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"failed to fetch",
	"client connection lost",
}

// IsConnectivityError is the default Classifier.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, common.ErrOffline) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED, syscall.ECONNRESET,
		syscall.EHOSTUNREACH, syscall.ENETUNREACH, syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range transportPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Prober checks server reachability via the health endpoint.
type Prober struct {
	baseURL string
	client  *http.Client
}

func NewProber(baseURL string, client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	return &Prober{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Ping returns nil when the server answers its health endpoint with 2xx.
func (p *Prober) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}
