package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (a *App) Split(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: split <mob> <newName> <count>")
	}
	mob, err := a.findMob(ctx, args[0])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}

	created, err := a.farm.Mobs.Split(ctx, mob.ID(), args[1], count)
	if err != nil {
		return err
	}
	fmt.Printf("Split %d hd off %s into %s [%s]\n",
		count, mob.StringField("name"), created.StringField("name"), created.ID())
	return nil
}

func (a *App) Merge(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: merge <sourceMob> <destinationMob>")
	}
	src, err := a.findMob(ctx, args[0])
	if err != nil {
		return err
	}
	dst, err := a.findMob(ctx, args[1])
	if err != nil {
		return err
	}

	merged, err := a.farm.Mobs.Merge(ctx, src.ID(), dst.ID())
	if err != nil {
		return err
	}
	fmt.Printf("Merged %s into %s: now %d hd\n",
		src.StringField("name"), merged.StringField("name"), int(merged.NumberField("count")))
	return nil
}

func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <mob> <paddock>")
	}
	mob, err := a.findMob(ctx, args[0])
	if err != nil {
		return err
	}
	paddock, err := a.findPaddock(ctx, args[1])
	if err != nil {
		return err
	}

	if _, err := a.farm.Movements.Move(ctx, mob.ID(), paddock.ID()); err != nil {
		return err
	}
	fmt.Printf("Moved %s to %s\n", mob.StringField("name"), paddock.StringField("name"))
	return nil
}

func (a *App) Join(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: join <mob> [sire]")
	}
	mob, err := a.findMob(ctx, args[0])
	if err != nil {
		return err
	}
	sire := ""
	if len(args) == 2 {
		sire = args[1]
	}

	if _, err := a.farm.Joinings.Begin(ctx, mob.ID(), sire); err != nil {
		return err
	}
	fmt.Printf("Joining started for %s\n", mob.StringField("name"))
	return nil
}

func (a *App) EndJoin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: endjoin <mob>")
	}
	mob, err := a.findMob(ctx, args[0])
	if err != nil {
		return err
	}

	joinings, err := a.farm.Joinings.List(ctx)
	if err != nil {
		return err
	}
	for _, j := range joinings {
		if j.StringField("mobId") == mob.ID() && j.StringField("endDate") == "" {
			if _, err := a.farm.Joinings.End(ctx, j.ID()); err != nil {
				return err
			}
			fmt.Printf("Joining ended for %s\n", mob.StringField("name"))
			return nil
		}
	}
	return fmt.Errorf("no open joining for %s", mob.StringField("name"))
}
