package cli

import (
	"context"
	"fmt"
)

// Sync runs one replay pass by hand.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.engine.Replay(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d, failed %d\n", res.Applied, res.Failed)
	return nil
}

// Status shows connectivity, the pending-queue depth and the last
// successful sync pass.
func (a *App) Status(ctx context.Context) error {
	n, err := a.queue.Len(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Mode:     %s\n", a.currentMode())
	fmt.Printf("Pending:  %d change(s)\n", n)

	ts, ok, err := a.engine.LastSyncAt(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("Last sync: %s\n", ts.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Last sync: never")
	}
	return nil
}
