package screens

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/localstore"
	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/query"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/adminusers"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/logging"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"github.com/dmitrijs2005/opsdash/internal/remote/memory"
	"github.com/dmitrijs2005/opsdash/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(s *memory.Store, n int) {
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u%02d", i)
		s.Insert(remote.GoogleUsers, remote.Record{"id": "g" + id, "user_id": id, "google_email": id + "@gmail.com"})
		s.Insert(remote.UserPricingPlans, remote.Record{"id": "p" + id, "user_id": id, "plan_type": "individual"})
		name := "Regular"
		if i%5 == 0 {
			name = "Special"
		}
		s.Insert(remote.Users, remote.Record{
			"id": id, "email": id + "@corp.io", "name": name,
			"created_at": base.Add(-time.Duration(i) * time.Minute),
		})
	}
}

func newServices(store remote.Store) Services {
	return Services{
		Overview: services.NewOverviewService(store),
		Users:    services.NewUserService(store, 4),
		Logs:     services.NewLogService(store),
		Emails:   services.NewEmailService(store),
	}
}

func TestUsersScreen_SearchAndPaging(t *testing.T) {
	store := memory.New()
	seedUsers(store, 25)
	scr := NewUsersScreen(services.NewUserService(store, 4), Options{})
	defer scr.Close()
	ctx := context.Background()

	snap := scr.Load(ctx, models.ProviderGoogle)
	require.NoError(t, snap.Err)
	assert.Equal(t, query.StatusSuccess, snap.Status)
	assert.Len(t, snap.Items, DefaultUsersPageSize)
	assert.Equal(t, 3, snap.Window.TotalPages)
	assert.Equal(t, 25, snap.Window.TotalCount)
	assert.Equal(t, []int{1, 2, 3}, snap.Buttons)
	assert.Equal(t, "u00", snap.Items[0].ID)

	snap = scr.Next()
	snap = scr.Next()
	assert.Equal(t, 3, snap.Window.CurrentPage)
	assert.Len(t, snap.Items, 5)
	assert.Equal(t, 3, scr.Next().Window.CurrentPage, "clamped at the last page")

	snap = scr.Search("special")
	assert.Equal(t, 1, snap.Window.CurrentPage, "new term resets the page")
	assert.Equal(t, 5, snap.Window.TotalCount)
	assert.Equal(t, "special", snap.Term)

	snap = scr.Search("  ")
	assert.Equal(t, 25, snap.Window.TotalCount)

	scr.SetPage(2)
	snap = scr.Refresh(ctx)
	assert.Equal(t, 2, snap.Window.CurrentPage, "refresh keeps the page")

	snap = scr.Load(ctx, models.ProviderMicrosoft)
	assert.Equal(t, 1, snap.Window.CurrentPage)
	assert.Empty(t, snap.Items)
	assert.Equal(t, models.ProviderMicrosoft, snap.Request)
}

func TestUsersScreen_ErrorKeepsRows(t *testing.T) {
	store := memory.New()
	seedUsers(store, 3)
	scr := NewUsersScreen(services.NewUserService(store, 4), Options{})
	defer scr.Close()
	ctx := context.Background()

	require.NoError(t, scr.Load(ctx, models.ProviderGoogle).Err)
	store.FailOn(remote.GoogleUsers, fmt.Errorf("connection reset"))

	snap := scr.Refresh(ctx)
	assert.Equal(t, query.StatusError, snap.Status)
	var qe *common.QueryError
	require.ErrorAs(t, snap.Err, &qe)
	assert.Len(t, snap.Items, 3, "previous rows stay visible")
}

func TestUsersScreen_FailedProviderSwitchShowsNoRows(t *testing.T) {
	store := memory.New()
	seedUsers(store, 3)
	scr := NewUsersScreen(services.NewUserService(store, 4), Options{})
	defer scr.Close()
	ctx := context.Background()

	require.Len(t, scr.Load(ctx, models.ProviderGoogle).Items, 3)
	store.FailOn(remote.MicrosoftUsers, fmt.Errorf("connection reset"))

	snap := scr.Load(ctx, models.ProviderMicrosoft)
	assert.Equal(t, query.StatusError, snap.Status)
	assert.Equal(t, models.ProviderMicrosoft, snap.Request)
	assert.Empty(t, snap.Items, "google rows must not be shown as microsoft users")
	assert.Equal(t, 0, snap.Window.TotalCount)
}

func TestLogsScreen(t *testing.T) {
	store := memory.New()
	now := time.Now()
	for i := 0; i < 30; i++ {
		store.Insert(remote.EdgeFunctionLogs, remote.Record{
			"id": fmt.Sprintf("l%02d", i), "function_name": "stripe-webhook",
			"created_at": now.Add(-time.Duration(i) * time.Second), "status": int64(200), "method": "POST",
		})
	}
	store.Insert(remote.EdgeFunctionLogs, remote.Record{
		"id": "bad", "function_name": "stripe-webhook", "created_at": now, "status": int64(500),
		"method": "POST", "error": "card_declined",
	})

	d := NewDashboard(newServices(store), nil, Options{LogsPageSize: 20})
	defer d.Close()
	ctx := context.Background()

	snap := d.Logs.Load(ctx, LogsRequest{Function: "stripe-webhook", Mode: services.ViewLast10Days})
	require.NoError(t, snap.Err)
	assert.Equal(t, 31, snap.Window.TotalCount)
	assert.Len(t, snap.Items, 20)

	snap = d.Logs.Search("declined")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "bad", snap.Items[0].ID)

	snap = d.Logs.Load(ctx, LogsRequest{
		Function: "stripe-webhook",
		Mode:     services.ViewCustom,
		Custom:   timex.DateRange{Start: now, End: now.AddDate(0, 0, -2)},
	})
	assert.Equal(t, query.StatusError, snap.Status)
	assert.ErrorIs(t, snap.Err, common.ErrValidation)

	errs := d.Errors.Load(ctx, struct{}{})
	require.NoError(t, errs.Err)
	require.Len(t, errs.Data, 1)
	assert.True(t, errs.Data[0].Failed())
}

func TestRecentView(t *testing.T) {
	store := memory.New()
	now := time.Now()
	for i := 0; i < services.RecentLimit+10; i++ {
		store.Insert(remote.EdgeFunctionLogs, remote.Record{
			"id": fmt.Sprintf("l%02d", i), "function_name": "stripe-webhook",
			"created_at": now.AddDate(0, 0, -i), "status": int64(200), "method": "POST",
		})
	}

	d := NewDashboard(newServices(store), nil, Options{})
	defer d.Close()
	ctx := context.Background()

	st := d.Recent.Load(ctx, "stripe-webhook")
	require.NoError(t, st.Err)
	require.Len(t, st.Data, services.RecentLimit)
	assert.Equal(t, "l00", st.Data[0].ID)
	assert.Equal(t, "stripe-webhook", st.Request)

	st = d.Recent.Load(ctx, "not-a-function")
	assert.Equal(t, query.StatusError, st.Status)
	assert.ErrorIs(t, st.Err, common.ErrValidation)
	assert.Empty(t, st.Data)
}

func TestEmailsScreen(t *testing.T) {
	store := memory.New()
	now := time.Now()
	for i := 0; i < 45; i++ {
		store.Insert(remote.EmailPrioLogs, remote.Record{
			"id": fmt.Sprintf("e%02d", i), "created_at": now.Add(-time.Duration(i) * time.Minute),
			"email_subject": fmt.Sprintf("subject %d", i),
		})
	}
	scr := NewEmailsScreen(services.NewEmailService(store), Options{})
	defer scr.Close()
	ctx := context.Background()

	snap := scr.Snapshot()
	assert.Equal(t, query.StatusIdle, snap.Status)
	assert.Equal(t, 1, snap.Window.TotalPages)

	snap = scr.Search(ctx, "")
	require.NoError(t, snap.Err)
	assert.Equal(t, 3, snap.Window.TotalPages)
	assert.Len(t, snap.Items, 20)

	snap = scr.Prev(ctx)
	assert.Equal(t, 1, snap.Window.CurrentPage)

	scr.Next(ctx)
	snap = scr.Next(ctx)
	assert.Equal(t, 3, snap.Window.CurrentPage)
	assert.Len(t, snap.Items, 5)

	snap = scr.SetPage(ctx, 99)
	assert.Equal(t, 3, snap.Window.CurrentPage)

	snap = scr.Search(ctx, "SUBJECT 4")
	assert.Equal(t, 1, snap.Window.CurrentPage)
	assert.Equal(t, 6, snap.Window.TotalCount, "4 and 40..44")
	assert.Equal(t, "SUBJECT 4", snap.Term)
}

func TestEmailsScreen_SetPageBeforeAnyLoad(t *testing.T) {
	store := memory.New()
	for i := 0; i < 25; i++ {
		store.Insert(remote.EmailPrioLogs, remote.Record{
			"id": fmt.Sprintf("e%02d", i), "created_at": time.Now().Add(-time.Duration(i) * time.Minute),
			"email_subject": fmt.Sprintf("subject %d", i),
		})
	}
	scr := NewEmailsScreen(services.NewEmailService(store), Options{})
	defer scr.Close()
	ctx := context.Background()

	snap := scr.SetPage(ctx, 99)
	require.NoError(t, snap.Err)
	assert.Equal(t, 2, snap.Window.CurrentPage)
	assert.Equal(t, 2, snap.Window.TotalPages)
	assert.Len(t, snap.Items, 5)

	snap = scr.Prev(ctx)
	assert.Equal(t, 1, snap.Window.CurrentPage, "prev steps back from the page shown")
}

func TestOverviewScreen(t *testing.T) {
	store := memory.New()
	store.Insert(remote.Users, remote.Record{"id": "u1", "email": "a@x", "created_at": time.Now()})
	d := NewDashboard(newServices(store), nil, Options{QueryTimeout: time.Second})
	defer d.Close()

	st := d.Overview.Open(context.Background())
	require.NoError(t, st.Err)
	assert.Equal(t, 1, st.Data.Today.NewUsers)
	assert.Len(t, st.Data.Daily, services.ChartDays)
}

func TestSettingsScreen(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Insert(remote.AdminUsers, remote.Record{
		"id": "0b0f7b9e-9d5c-4a53-a1f4-3f8d7c0e2a11", "email": "ops@example.com",
		"password": "hunter2", "created_at": time.Now(), "last_login": nil,
	})
	local, err := localstore.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	gate := session.NewGate(adminusers.NewRemoteRepository(store), local.Metadata,
		session.Options{Secret: []byte("test-secret")}, logging.Discard())
	scr := NewSettingsScreen(gate)

	_, ok := scr.Current()
	assert.False(t, ok)

	require.NoError(t, gate.SignIn(ctx, "ops@example.com", "hunter2"))
	s, ok := scr.Current()
	require.True(t, ok)
	assert.Equal(t, "ops@example.com", s.Email)
	assert.Equal(t, "ops", s.DisplayName)
	assert.NotEqual(t, "Never", s.LastLogin, "sign in records the login time")

	require.NoError(t, scr.SignOut(ctx))
	assert.Equal(t, session.StateUnauthenticated, gate.State())
	_, ok = scr.Current()
	assert.False(t, ok)
}

func TestSettingsFor_NeverLoggedIn(t *testing.T) {
	s := SettingsFor(session.Session{ID: "x", Email: "root@example.com"})
	assert.Equal(t, Settings{Email: "root@example.com", DisplayName: "root", LastLogin: "Never"}, s)
}
