package syncer

import (
	"context"

	"github.com/openpaddock/muster/internal/logging"
	"github.com/openpaddock/muster/internal/netx"
)

// Step is one remote call of a multi-step operation. Compensate, when set,
// reverses an already-applied Run so a later step's domain failure does not
// leave the server in a half-transformed state.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Coordinator sequences remote steps. A connectivity-absent failure on any
// step abandons the remote path and runs the offline branch instead; any
// other failure rolls back the steps already applied, in reverse order, and
// propagates. Compensation is best effort: its own failure is logged and
// swallowed, never surfaced over the primary error.
type Coordinator struct {
	Offline netx.Classifier
	Log     logging.Logger
}

func (c *Coordinator) offline(err error) bool {
	if c.Offline != nil {
		return c.Offline(err)
	}
	return netx.IsConnectivityError(err)
}

func (c *Coordinator) Run(ctx context.Context, steps []Step, fallback func(ctx context.Context) error) error {
	var applied []Step
	for _, s := range steps {
		err := s.Run(ctx)
		if err == nil {
			applied = append(applied, s)
			continue
		}
		if c.offline(err) {
			return fallback(ctx)
		}
		c.rollback(ctx, applied)
		return err
	}
	return nil
}

func (c *Coordinator) rollback(ctx context.Context, applied []Step) {
	for i := len(applied) - 1; i >= 0; i-- {
		s := applied[i]
		if s.Compensate == nil {
			continue
		}
		if cerr := s.Compensate(ctx); cerr != nil && c.Log != nil {
			c.Log.Error(ctx, "compensation failed, server state may be inconsistent",
				"step", s.Name, "error", cerr)
		}
	}
}
