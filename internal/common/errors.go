// Package common defines shared constants and sentinel errors used across
// the Muster client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Local persistence failures wrap this sentinel. The sync core never
	// retries them.
	ErrStorage = errors.New("storage error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrSessionNotAvailable = errors.New("no stored session")

	// Sync errors.
	ErrDrainBusy = errors.New("drain already in progress")
	ErrOffline   = errors.New("server unreachable")
)
