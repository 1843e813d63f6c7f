package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

func (a *App) ListPaddocks(ctx context.Context) error {
	paddocks, err := a.farm.Paddocks.List(ctx)
	if err != nil {
		return err
	}
	if len(paddocks) == 0 {
		fmt.Println("No paddocks.")
		return nil
	}
	for _, p := range paddocks {
		fmt.Printf("%-20s %7.1f ha  %-10s [%s]\n",
			p.StringField("name"), p.NumberField("areaHa"),
			orDash(p.StringField("cropType")), p.ID())
	}
	return nil
}

func (a *App) AddPaddock(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: addpaddock <name> <areaHa> [cropType]")
	}
	area, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("areaHa must be a number: %w", err)
	}
	cropType := ""
	if len(args) == 3 {
		cropType = args[2]
	}

	p, err := a.farm.Paddocks.Add(ctx, args[0], area, cropType)
	if err != nil {
		return err
	}
	fmt.Printf("Added paddock %s [%s]\n", p.StringField("name"), p.ID())
	return nil
}

// ImportBoundary uploads a KML file as a paddock's boundary. Online only.
func (a *App) ImportBoundary(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: boundary <paddock> <file.kml>")
	}
	paddock, err := a.findPaddock(ctx, args[0])
	if err != nil {
		return err
	}
	kml, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	if err := a.farm.Paddocks.ImportBoundary(ctx, paddock.ID(), kml); err != nil {
		return err
	}
	fmt.Println("Boundary imported.")
	return nil
}
