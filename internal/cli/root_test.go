package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string, args ...string) error {
	s.calls = append(s.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func (s *stubExec) isLoggedIn() bool                   { return s.loggedIn }
func (s *stubExec) Login(context.Context) error        { return s.record("login") }
func (s *stubExec) Logout(context.Context) error       { return s.record("logout") }
func (s *stubExec) ListMobs(context.Context) error     { return s.record("mobs") }
func (s *stubExec) ListPaddocks(context.Context) error { return s.record("paddocks") }
func (s *stubExec) Sync(context.Context) error         { return s.record("sync") }
func (s *stubExec) Status(context.Context) error       { return s.record("status") }

func (s *stubExec) AddMob(_ context.Context, args []string) error {
	return s.record("addmob", args...)
}
func (s *stubExec) AddPaddock(_ context.Context, args []string) error {
	return s.record("addpaddock", args...)
}
func (s *stubExec) ImportBoundary(_ context.Context, args []string) error {
	return s.record("boundary", args...)
}
func (s *stubExec) Split(_ context.Context, args []string) error {
	return s.record("split", args...)
}
func (s *stubExec) Merge(_ context.Context, args []string) error {
	return s.record("merge", args...)
}
func (s *stubExec) Move(_ context.Context, args []string) error {
	return s.record("move", args...)
}
func (s *stubExec) Join(_ context.Context, args []string) error {
	return s.record("join", args...)
}
func (s *stubExec) EndJoin(_ context.Context, args []string) error {
	return s.record("endjoin", args...)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func runScript(t *testing.T, a execIface, script string) []string {
	t.Helper()
	out := captureOutput(t)
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), a, func() string { return "(test)" }, scanner)
	return *out
}

func TestREPL_DispatchesCommandsWithArgs(t *testing.T) {
	stub := &stubExec{loggedIn: true}

	runScript(t, stub, strings.Join([]string{
		"mobs",
		"split Ewes Lambs 120",
		"merge Lambs Ewes",
		"move Ewes river-flat",
		"sync",
		"status",
		"exit",
	}, "\n"))

	assert.Equal(t, []string{
		"mobs",
		"split Ewes Lambs 120",
		"merge Lambs Ewes",
		"move Ewes river-flat",
		"sync",
		"status",
	}, stub.calls)
}

func TestREPL_UnknownCommandIsReported(t *testing.T) {
	stub := &stubExec{}
	out := runScript(t, stub, "shear\nexit")

	joined := strings.Join(out, "")
	assert.Contains(t, joined, "Unknown command: shear")
	assert.Empty(t, stub.calls)
}

func TestREPL_BlankLinesAndEOF(t *testing.T) {
	stub := &stubExec{}
	runScript(t, stub, "\n   \nmobs")
	assert.Equal(t, []string{"mobs"}, stub.calls)
}

func TestREPL_HelpDependsOnLogin(t *testing.T) {
	out := runScript(t, &stubExec{}, "help\nexit")
	assert.Contains(t, strings.Join(out, ""), "login")

	out = runScript(t, &stubExec{loggedIn: true}, "help\nexit")
	assert.Contains(t, strings.Join(out, ""), "split")
}

func TestGetSimpleText(t *testing.T) {
	var w strings.Builder
	reader := bufio.NewReader(strings.NewReader("  North Flock  \n"))

	got, err := GetSimpleText(reader, "Enter name", &w)
	assert.NoError(t, err)
	assert.Equal(t, "North Flock", got)
	assert.Contains(t, w.String(), "Enter name")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var w strings.Builder
	reader := bufio.NewReader(strings.NewReader("no newline"))

	got, err := GetSimpleText(reader, "Enter name", &w)
	assert.NoError(t, err)
	assert.Equal(t, "no newline", got)
}
