package screens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/listing"
	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/query"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/logging"
	"github.com/dmitrijs2005/opsdash/internal/timex"
)

// Page sizes of the list screens.
const (
	DefaultUsersPageSize  = 10
	DefaultLogsPageSize   = 20
	DefaultEmailsPageSize = 20
)

// Services are the data sources the screens read from.
type Services struct {
	Overview *services.OverviewService
	Users    *services.UserService
	Logs     *services.LogService
	Emails   *services.EmailService
}

type Options struct {
	UsersPageSize  int
	LogsPageSize   int
	EmailsPageSize int
	QueryTimeout   time.Duration
	Logger         logging.Logger
}

func (o Options) withDefaults() Options {
	if o.UsersPageSize <= 0 {
		o.UsersPageSize = DefaultUsersPageSize
	}
	if o.LogsPageSize <= 0 {
		o.LogsPageSize = DefaultLogsPageSize
	}
	if o.EmailsPageSize <= 0 {
		o.EmailsPageSize = DefaultEmailsPageSize
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

func (o Options) view(name string) []query.Option {
	return []query.Option{
		query.WithName(name),
		query.WithTimeout(o.QueryTimeout),
		query.WithLogger(o.Logger),
	}
}

// LogsRequest selects the invocations shown by the logs screen.
type LogsRequest struct {
	Function string
	Mode     services.ViewMode

	// Custom is only read when Mode is services.ViewCustom.
	Custom timex.DateRange
}

// Range resolves the request's date range at now.
func (r LogsRequest) Range(now time.Time) (timex.DateRange, error) {
	return r.Mode.Range(now, r.Custom)
}

type (
	UsersScreen = List[models.Provider, models.ProviderUser]
	LogsScreen  = List[LogsRequest, models.EdgeFunctionLog]
)

// Dashboard holds one instance of every screen of a signed-in operator.
type Dashboard struct {
	Overview *OverviewScreen
	Users    *UsersScreen
	Logs     *LogsScreen
	Errors   *query.View[struct{}, []models.EdgeFunctionLog]
	Recent   *query.View[string, []models.EdgeFunctionLog]
	Emails   *EmailsScreen
	Settings *SettingsScreen
}

func NewDashboard(svc Services, gate *session.Gate, opts Options) *Dashboard {
	opts = opts.withDefaults()
	return &Dashboard{
		Overview: NewOverviewScreen(svc.Overview, opts),
		Users:    NewUsersScreen(svc.Users, opts),
		Logs:     NewLogsScreen(svc.Logs, opts),
		Errors:   NewErrorsView(svc.Logs, opts),
		Recent:   NewRecentView(svc.Logs, opts),
		Emails:   NewEmailsScreen(svc.Emails, opts),
		Settings: NewSettingsScreen(gate),
	}
}

// Close cancels every in-flight fetch.
func (d *Dashboard) Close() {
	d.Overview.Close()
	d.Users.Close()
	d.Logs.Close()
	d.Errors.Close()
	d.Recent.Close()
	d.Emails.Close()
}

func NewUsersScreen(svc *services.UserService, opts Options) *UsersScreen {
	opts = opts.withDefaults()
	return NewList(svc.ProviderUsers, opts.UsersPageSize, opts.view("users")...)
}

func NewLogsScreen(svc *services.LogService, opts Options) *LogsScreen {
	opts = opts.withDefaults()
	fetch := func(ctx context.Context, req LogsRequest) ([]models.EdgeFunctionLog, error) {
		r, err := req.Range(svc.Now())
		if err != nil {
			return nil, err
		}
		return svc.FunctionLogs(ctx, req.Function, r)
	}
	return NewList(fetch, opts.LogsPageSize, opts.view("logs")...)
}

// NewErrorsView lists today's failed invocations across all functions.
func NewErrorsView(svc *services.LogService, opts Options) *query.View[struct{}, []models.EdgeFunctionLog] {
	opts = opts.withDefaults()
	fetch := func(ctx context.Context, _ struct{}) ([]models.EdgeFunctionLog, error) {
		return svc.TodayErrors(ctx)
	}
	return query.NewView(fetch, opts.view("errors")...)
}

// NewRecentView lists the latest services.RecentLimit invocations of the
// requested function, regardless of date.
func NewRecentView(svc *services.LogService, opts Options) *query.View[string, []models.EdgeFunctionLog] {
	opts = opts.withDefaults()
	fetch := func(ctx context.Context, fn string) ([]models.EdgeFunctionLog, error) {
		return svc.Recent(ctx, fn, services.RecentLimit)
	}
	return query.NewView(fetch, opts.view("recent")...)
}

// OverviewScreen shows the stats rows, the daily chart and subscriber counts.
type OverviewScreen struct {
	*query.View[struct{}, services.Overview]
}

func NewOverviewScreen(svc *services.OverviewService, opts Options) *OverviewScreen {
	opts = opts.withDefaults()
	fetch := func(ctx context.Context, _ struct{}) (services.Overview, error) {
		return svc.Overview(ctx)
	}
	return &OverviewScreen{View: query.NewView(fetch, opts.view("overview")...)}
}

func (s *OverviewScreen) Open(ctx context.Context) query.State[struct{}, services.Overview] {
	return s.Load(ctx, struct{}{})
}

// EmailsRequest is one server-side page of the emails screen.
type EmailsRequest struct {
	Term string
	Page int
}

// EmailsScreen pages through email_prio_logs on the server; only the
// current page is held locally.
type EmailsScreen struct {
	view     *query.View[EmailsRequest, services.EmailPage]
	pageSize int
}

func NewEmailsScreen(svc *services.EmailService, opts Options) *EmailsScreen {
	opts = opts.withDefaults()
	size := opts.EmailsPageSize
	fetch := func(ctx context.Context, req EmailsRequest) (services.EmailPage, error) {
		return svc.Page(ctx, req.Term, req.Page, size)
	}
	return &EmailsScreen{view: query.NewView(fetch, opts.view("emails")...), pageSize: size}
}

// Load fetches one page as given.
func (s *EmailsScreen) Load(ctx context.Context, req EmailsRequest) Snapshot[EmailsRequest, models.EmailLog] {
	s.view.Load(ctx, req)
	return s.Snapshot()
}

// Search loads the first page of emails whose subject contains term.
func (s *EmailsScreen) Search(ctx context.Context, term string) Snapshot[EmailsRequest, models.EmailLog] {
	return s.Load(ctx, EmailsRequest{Term: term, Page: 1})
}

// SetPage loads page of the current search, clamped to the known page count.
// When no count is known yet the service clamps it.
func (s *EmailsScreen) SetPage(ctx context.Context, page int) Snapshot[EmailsRequest, models.EmailLog] {
	st := s.view.State()
	total := st.Data.Window.TotalPages
	if total > 0 {
		page = listing.ClampPage(page, total)
	}
	s.view.Load(ctx, EmailsRequest{Term: st.Request.Term, Page: max(page, 1)})
	return s.Snapshot()
}

func (s *EmailsScreen) Next(ctx context.Context) Snapshot[EmailsRequest, models.EmailLog] {
	return s.SetPage(ctx, s.current()+1)
}

func (s *EmailsScreen) Prev(ctx context.Context) Snapshot[EmailsRequest, models.EmailLog] {
	return s.SetPage(ctx, s.current()-1)
}

func (s *EmailsScreen) Refresh(ctx context.Context) Snapshot[EmailsRequest, models.EmailLog] {
	s.view.Refresh(ctx)
	return s.Snapshot()
}

// current is the page shown, which the service may have clamped below the
// page requested.
func (s *EmailsScreen) current() int {
	st := s.view.State()
	if p := st.Data.Window.CurrentPage; p > 0 {
		return p
	}
	return max(st.Request.Page, 1)
}

func (s *EmailsScreen) Snapshot() Snapshot[EmailsRequest, models.EmailLog] {
	st := s.view.State()
	w := st.Data.Window
	if w.TotalPages == 0 {
		w = listing.PageWindow{CurrentPage: 1, TotalPages: 1}
	}
	return Snapshot[EmailsRequest, models.EmailLog]{
		Status:    st.Status,
		Request:   st.Request,
		Err:       st.Err,
		Items:     st.Data.Items,
		Window:    w,
		Buttons:   listing.Buttons(w.CurrentPage, w.TotalPages),
		Term:      st.Request.Term,
		UpdatedAt: st.UpdatedAt,
	}
}

func (s *EmailsScreen) PageSize() int { return s.pageSize }

func (s *EmailsScreen) Close() { s.view.Close() }

// Settings is the account summary of the signed-in administrator.
type Settings struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	LastLogin   string `json:"last_login"`
}

// SettingsFor formats a session for the settings screen.
func SettingsFor(s session.Session) Settings {
	a := s.Admin()
	return Settings{Email: a.Email, DisplayName: a.DisplayName(), LastLogin: a.LastLoginText()}
}

type SettingsScreen struct {
	gate *session.Gate
}

func NewSettingsScreen(gate *session.Gate) *SettingsScreen {
	return &SettingsScreen{gate: gate}
}

// Current returns the settings of the signed-in administrator, false when
// nobody is signed in.
func (s *SettingsScreen) Current() (Settings, bool) {
	sess, ok := s.gate.Session()
	if !ok {
		return Settings{}, false
	}
	return SettingsFor(sess), true
}

func (s *SettingsScreen) SignOut(ctx context.Context) error {
	return s.gate.SignOut(ctx)
}
