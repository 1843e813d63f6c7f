package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openpaddock/muster/internal/store"
)

func (a *App) ListMobs(ctx context.Context) error {
	mobs, err := a.farm.Mobs.List(ctx)
	if err != nil {
		return err
	}
	if len(mobs) == 0 {
		fmt.Println("No mobs.")
		return nil
	}
	for _, m := range mobs {
		fmt.Printf("%-20s %5d hd  %6.1f kg  paddock=%s  [%s]\n",
			m.StringField("name"), int(m.NumberField("count")),
			m.NumberField("avgWeight"), orDash(m.StringField("paddockId")), m.ID())
	}
	return nil
}

func (a *App) AddMob(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return fmt.Errorf("usage: addmob <name> <count> [avgWeight] [paddock]")
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}

	var avgWeight float64
	if len(args) > 2 {
		if avgWeight, err = strconv.ParseFloat(args[2], 64); err != nil {
			return fmt.Errorf("avgWeight must be a number: %w", err)
		}
	}

	var paddockID string
	if len(args) > 3 {
		paddock, err := a.findPaddock(ctx, args[3])
		if err != nil {
			return err
		}
		paddockID = paddock.ID()
	}

	mob, err := a.farm.Mobs.Add(ctx, args[0], count, avgWeight, paddockID)
	if err != nil {
		return err
	}
	fmt.Printf("Added mob %s [%s]\n", mob.StringField("name"), mob.ID())
	return nil
}

// findMob resolves a user-supplied reference, id or unique name, to a mob.
func (a *App) findMob(ctx context.Context, ref string) (store.Record, error) {
	mobs, err := a.farm.Mobs.List(ctx)
	if err != nil {
		return nil, err
	}
	return findByRef(mobs, ref, "mob")
}

func (a *App) findPaddock(ctx context.Context, ref string) (store.Record, error) {
	paddocks, err := a.farm.Paddocks.List(ctx)
	if err != nil {
		return nil, err
	}
	return findByRef(paddocks, ref, "paddock")
}

func findByRef(records []store.Record, ref, kind string) (store.Record, error) {
	var match store.Record
	for _, r := range records {
		if r.ID() == ref {
			return r, nil
		}
		if r.StringField("name") == ref {
			if match != nil {
				return nil, fmt.Errorf("%s name %q is ambiguous, use the id", kind, ref)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no %s named %q", kind, ref)
	}
	return match, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
