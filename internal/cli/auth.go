package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. Login is online-only; cached
// data stays readable without it, but new writes need a session to replay.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	pair, err := a.client.Login(ctx, username, password, a.session.DeviceID())
	if err != nil {
		return err
	}
	if err := a.session.SignIn(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return err
	}

	fmt.Println("Signed in.")
	a.setMode(ctx, ModeOnline)
	return nil
}

// Logout forgets the stored tokens. Cached records and queued changes are
// kept: they belong to the device, not the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}
