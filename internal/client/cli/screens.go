package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/query"
	"github.com/dmitrijs2005/opsdash/internal/client/screens"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/timex"
)

var errNoListScreen = fmt.Errorf("%w: open users, logs or emails first", common.ErrValidation)

func (a *App) usage(msg string) error {
	fmt.Fprintln(a.out, "usage:", msg)
	return fmt.Errorf("%w: usage: %s", common.ErrValidation, msg)
}

// failed prints err inline and reports whether the state carries one.
func failed(a *App, status query.Status, err error) bool {
	if status != query.StatusError {
		return false
	}
	a.inlineError(err)
	return true
}

func (a *App) Overview(ctx context.Context) error {
	a.active = screenOverview
	st := a.dash.Overview.Open(ctx)
	if failed(a, st.Status, st.Err) {
		return st.Err
	}
	renderOverview(a.out, st.Data)
	return nil
}

// Users shows the users of a provider, google by default.
func (a *App) Users(ctx context.Context, args []string) error {
	provider := models.ProviderGoogle
	if len(args) > 0 {
		p, err := models.ParseProvider(strings.ToLower(args[0]))
		if err != nil {
			return a.usage("users [google|microsoft]")
		}
		provider = p
	}
	a.active = screenUsers
	return a.showUsers(a.dash.Users.Load(ctx, provider))
}

func (a *App) showUsers(snap screens.Snapshot[models.Provider, models.ProviderUser]) error {
	fmt.Fprintf(a.out, "Users (%s)\n", snap.Request)
	failed(a, snap.Status, snap.Err)
	renderUsers(a.out, snap.Items, (snap.Window.CurrentPage-1)*a.pageSize(screenUsers), a.now())
	renderFooter(a.out, snap.Window, snap.Buttons, snap.Term)
	return snap.Err
}

// Logs shows one edge function's invocations:
// logs <function> [today|yesterday|last10days|week|recent|custom <from> <to>].
func (a *App) Logs(ctx context.Context, args []string) error {
	const usage = "logs <function> [today|yesterday|last10days|week|recent|custom <yyyy-mm-dd> <yyyy-mm-dd>]"
	if len(args) == 0 {
		_ = a.Functions(ctx)
		return a.usage(usage)
	}
	req := screens.LogsRequest{Function: args[0], Mode: services.ViewToday}
	if !models.IsEdgeFunction(req.Function) {
		fmt.Fprintf(a.out, "unknown function %q, see 'functions'\n", req.Function)
		return fmt.Errorf("%w: unknown function %q", common.ErrValidation, req.Function)
	}
	if len(args) > 1 && strings.EqualFold(args[1], "recent") {
		if len(args) != 2 {
			return a.usage(usage)
		}
		return a.Recent(ctx, req.Function)
	}
	if len(args) > 1 {
		mode, err := services.ParseViewMode(strings.ToLower(args[1]))
		if err != nil {
			return a.usage(usage)
		}
		req.Mode = mode
	}
	if req.Mode == services.ViewCustom {
		if len(args) != 4 {
			return a.usage(usage)
		}
		from, err1 := time.ParseInLocation(timex.DayLayout, args[2], time.Local)
		to, err2 := time.ParseInLocation(timex.DayLayout, args[3], time.Local)
		if err := errors.Join(err1, err2); err != nil {
			return a.usage(usage)
		}
		req.Custom = timex.DateRange{Start: from, End: to}
	}

	a.active = screenLogs
	return a.showLogs(a.dash.Logs.Load(ctx, req))
}

func (a *App) showLogs(snap screens.Snapshot[screens.LogsRequest, models.EdgeFunctionLog]) error {
	fmt.Fprintf(a.out, "%s (%s)\n", snap.Request.Function, snap.Request.Mode)
	failed(a, snap.Status, snap.Err)
	renderLogs(a.out, snap.Items, (snap.Window.CurrentPage-1)*a.pageSize(screenLogs), false)
	renderFooter(a.out, snap.Window, snap.Buttons, snap.Term)
	return snap.Err
}

// Recent shows the latest invocations of fn across all dates.
func (a *App) Recent(ctx context.Context, fn string) error {
	a.active = screenRecent
	return a.showRecent(a.dash.Recent.Load(ctx, fn))
}

func (a *App) showRecent(st query.State[string, []models.EdgeFunctionLog]) error {
	fmt.Fprintf(a.out, "%s (last %d)\n", st.Request, services.RecentLimit)
	if failed(a, st.Status, st.Err) {
		return st.Err
	}
	renderLogs(a.out, st.Data, 0, false)
	return nil
}

// Functions lists the edge function catalog.
func (a *App) Functions(context.Context) error {
	for i, fn := range models.EdgeFunctions {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, fn)
	}
	return nil
}

// Errors shows today's failed invocations of every function.
func (a *App) Errors(ctx context.Context) error {
	a.active = screenErrors
	st := a.dash.Errors.Load(ctx, struct{}{})
	return a.showErrors(st)
}

func (a *App) showErrors(st query.State[struct{}, []models.EdgeFunctionLog]) error {
	if failed(a, st.Status, st.Err) {
		return st.Err
	}
	fmt.Fprintf(a.out, "Errors today: %d\n", len(st.Data))
	renderLogs(a.out, st.Data, 0, true)
	return nil
}

// Emails searches email subjects; without a term every email is listed.
func (a *App) Emails(ctx context.Context, args []string) error {
	a.active = screenEmails
	return a.showEmails(a.dash.Emails.Search(ctx, strings.Join(args, " ")))
}

func (a *App) showEmails(snap screens.Snapshot[screens.EmailsRequest, models.EmailLog]) error {
	fmt.Fprintln(a.out, "Emails")
	failed(a, snap.Status, snap.Err)
	renderEmails(a.out, snap.Items, (snap.Window.CurrentPage-1)*a.pageSize(screenEmails))
	renderFooter(a.out, snap.Window, snap.Buttons, snap.Term)
	return snap.Err
}

func (a *App) pageSize(s listScreen) int {
	switch s {
	case screenUsers:
		return a.dash.Users.PageSize()
	case screenLogs:
		return a.dash.Logs.PageSize()
	case screenEmails:
		return a.dash.Emails.PageSize()
	}
	return 0
}

// Search filters the current list screen. Users and logs filter the fetched
// rows; emails query the server.
func (a *App) Search(ctx context.Context, args []string) error {
	term := strings.Join(args, " ")
	switch a.active {
	case screenUsers:
		return a.showUsers(a.dash.Users.Search(term))
	case screenLogs:
		return a.showLogs(a.dash.Logs.Search(term))
	case screenEmails:
		return a.showEmails(a.dash.Emails.Search(ctx, term))
	}
	a.inlineError(errNoListScreen)
	return errNoListScreen
}

func (a *App) Page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("page <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.usage("page <n>")
	}
	switch a.active {
	case screenUsers:
		return a.showUsers(a.dash.Users.SetPage(n))
	case screenLogs:
		return a.showLogs(a.dash.Logs.SetPage(n))
	case screenEmails:
		return a.showEmails(a.dash.Emails.SetPage(ctx, n))
	}
	a.inlineError(errNoListScreen)
	return errNoListScreen
}

func (a *App) Next(ctx context.Context) error {
	switch a.active {
	case screenUsers:
		return a.showUsers(a.dash.Users.Next())
	case screenLogs:
		return a.showLogs(a.dash.Logs.Next())
	case screenEmails:
		return a.showEmails(a.dash.Emails.Next(ctx))
	}
	a.inlineError(errNoListScreen)
	return errNoListScreen
}

func (a *App) Prev(ctx context.Context) error {
	switch a.active {
	case screenUsers:
		return a.showUsers(a.dash.Users.Prev())
	case screenLogs:
		return a.showLogs(a.dash.Logs.Prev())
	case screenEmails:
		return a.showEmails(a.dash.Emails.Prev(ctx))
	}
	a.inlineError(errNoListScreen)
	return errNoListScreen
}

// Show prints row n (1-based, counted across pages) of the current screen.
func (a *App) Show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("show <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return a.usage("show <n>")
	}

	var found bool
	switch a.active {
	case screenUsers:
		snap := a.dash.Users.Snapshot()
		if i := n - 1 - (snap.Window.CurrentPage-1)*a.pageSize(screenUsers); i >= 0 && i < len(snap.Items) {
			renderUser(a.out, snap.Items[i], a.now())
			found = true
		}
	case screenLogs:
		snap := a.dash.Logs.Snapshot()
		if i := n - 1 - (snap.Window.CurrentPage-1)*a.pageSize(screenLogs); i >= 0 && i < len(snap.Items) {
			renderLog(a.out, snap.Items[i])
			found = true
		}
	case screenErrors:
		data := a.dash.Errors.State().Data
		if n <= len(data) {
			renderLog(a.out, data[n-1])
			found = true
		}
	case screenRecent:
		data := a.dash.Recent.State().Data
		if n <= len(data) {
			renderLog(a.out, data[n-1])
			found = true
		}
	case screenEmails:
		snap := a.dash.Emails.Snapshot()
		if i := n - 1 - (snap.Window.CurrentPage-1)*a.pageSize(screenEmails); i >= 0 && i < len(snap.Items) {
			renderEmail(a.out, snap.Items[i])
			found = true
		}
	default:
		a.inlineError(errNoListScreen)
		return errNoListScreen
	}
	if !found {
		err := fmt.Errorf("%w: row %d is not on the current page", common.ErrValidation, n)
		a.inlineError(err)
		return err
	}
	return nil
}

// Refresh re-runs the current screen's last query.
func (a *App) Refresh(ctx context.Context) error {
	switch a.active {
	case screenOverview:
		st := a.dash.Overview.Refresh(ctx)
		if failed(a, st.Status, st.Err) {
			return st.Err
		}
		renderOverview(a.out, st.Data)
		return nil
	case screenUsers:
		return a.showUsers(a.dash.Users.Refresh(ctx))
	case screenLogs:
		return a.showLogs(a.dash.Logs.Refresh(ctx))
	case screenErrors:
		return a.showErrors(a.dash.Errors.Refresh(ctx))
	case screenRecent:
		return a.showRecent(a.dash.Recent.Refresh(ctx))
	case screenEmails:
		return a.showEmails(a.dash.Emails.Refresh(ctx))
	}
	fmt.Fprintln(a.out, "Nothing to refresh.")
	return nil
}

func (a *App) Settings(context.Context) error {
	s, ok := a.dash.Settings.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Email\t%s\n", s.Email)
	fmt.Fprintf(tw, "Name\t%s\n", s.DisplayName)
	fmt.Fprintf(tw, "Last login\t%s\n", s.LastLogin)
	_ = tw.Flush()
	return nil
}
