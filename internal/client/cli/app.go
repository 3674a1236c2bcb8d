package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/screens"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/logging"
)

// listScreen names the list screen that search, page, next, prev, show and
// refresh act on.
type listScreen string

const (
	screenNone     listScreen = ""
	screenOverview listScreen = "overview"
	screenUsers    listScreen = "users"
	screenLogs     listScreen = "logs"
	screenErrors   listScreen = "errors"
	screenRecent   listScreen = "recent"
	screenEmails   listScreen = "emails"
)

type App struct {
	gate   *session.Gate
	dash   *screens.Dashboard
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
	now    func() time.Time

	active listScreen
}

func NewApp(gate *session.Gate, dash *screens.Dashboard, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		gate:   gate,
		dash:   dash,
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
		now:    time.Now,
	}
}

func (a *App) isLoggedIn() bool {
	return a.gate.State() == session.StateAuthenticated
}

func (a *App) status() string {
	s, ok := a.gate.Session()
	if !ok {
		return "(signed out)"
	}
	if a.active != screenNone {
		return fmt.Sprintf("(%s %s)", s.Email, a.active)
	}
	return fmt.Sprintf("(%s)", s.Email)
}

// Run restores the persisted session, asks for credentials when there is
// none, and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.dash.Close()

	unsubscribe := a.gate.Subscribe(func(st session.State, s *session.Session) {
		a.log.Debug(ctx, "session state changed", "state", st.String())
	})
	defer unsubscribe()

	fmt.Fprintln(a.out, "opsdash terminal (type 'help' for commands)")
	if a.gate.Load(ctx) == session.StateAuthenticated {
		s, _ := a.gate.Session()
		fmt.Fprintf(a.out, "Welcome back, %s\n", s.Admin().DisplayName())
	} else {
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
}
