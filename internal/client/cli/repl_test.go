package cli

import (
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Overview(ctx context.Context) error { return f.record("overview", nil) }
func (f *fakeExec) Users(ctx context.Context, args []string) error {
	return f.record("users", args)
}
func (f *fakeExec) Logs(ctx context.Context, args []string) error { return f.record("logs", args) }
func (f *fakeExec) Errors(ctx context.Context) error               { return f.record("errors", nil) }
func (f *fakeExec) Emails(ctx context.Context, args []string) error {
	return f.record("emails", args)
}
func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args)
}
func (f *fakeExec) Page(ctx context.Context, args []string) error { return f.record("page", args) }
func (f *fakeExec) Next(ctx context.Context) error                { return f.record("next", nil) }
func (f *fakeExec) Prev(ctx context.Context) error                { return f.record("prev", nil) }
func (f *fakeExec) Show(ctx context.Context, args []string) error { return f.record("show", args) }
func (f *fakeExec) Refresh(ctx context.Context) error             { return f.record("refresh", nil) }
func (f *fakeExec) Settings(ctx context.Context) error            { return f.record("settings", nil) }
func (f *fakeExec) Functions(ctx context.Context) error           { return f.record("functions", nil) }

func capturePrintln(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for i, v := range a {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(strings.TrimSpace(toString(v)))
		}
		sb.WriteString("\n")
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &sb
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"overview",
		"login",
		"help",
		"overview",
		"users microsoft",
		"search  foo  bar",
		"n",
		"page 3",
		"logs stripe-webhook week",
		"show 2",
		"emails",
		"refresh",
		"foobar",
		"exit",
		"settings",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{"login", "overview", "users", "search", "next", "page", "logs", "show", "emails", "refresh"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := exec.args[3]; strings.Join(got, "|") != "foo|bar" {
		t.Fatalf("search args = %v", got)
	}

	text := out.String()
	for _, s := range []string{helpSignedOut, "Please log in first.", helpSignedIn, "Unknown command: foobar", "Bye!", "opsdash status >"} {
		if !strings.Contains(text, s) {
			t.Fatalf("output misses %q:\n%s", s, text)
		}
	}
}

func TestRunREPL_UnknownWhileSignedOut(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("frobnicate\nquit\n"))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if !strings.Contains(out.String(), "Unknown command: frobnicate") {
		t.Fatalf("output: %s", out.String())
	}
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("overview"))
	if len(exec.calls) != 1 {
		t.Fatalf("calls: %v", exec.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{loggedIn: true}
	runREPL(ctx, exec, func() string { return "s" }, rdr("overview\n"))
	if len(exec.calls) != 0 {
		t.Fatalf("calls after cancel: %v", exec.calls)
	}
}
