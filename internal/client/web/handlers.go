package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/listing"
	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/query"
	"github.com/dmitrijs2005/opsdash/internal/client/screens"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/timex"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

// listResponse is one page of a list screen.
type listResponse[T any] struct {
	Items     []T                `json:"items"`
	Window    listing.PageWindow `json:"window"`
	Buttons   []int              `json:"buttons"`
	Search    string             `json:"search,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toList[Req, T any](snap screens.Snapshot[Req, T]) listResponse[T] {
	items := snap.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{
		Items:     items,
		Window:    snap.Window,
		Buttons:   snap.Buttons,
		Search:    snap.Term,
		UpdatedAt: snap.UpdatedAt,
	}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	sess, token, err := s.gate.Authenticate(r.Context(), req.Email, req.Password)
	s.metrics.ObserveSignIn(err)
	if err != nil {
		s.logger(r.Context()).Warn(r.Context(), "sign in failed", "email", req.Email, "error", err)
		s.fail(w, r, err)
		return
	}
	s.logger(r.Context()).Info(r.Context(), "signed in", "admin", sess.Email)
	writeJSON(w, http.StatusOK, signInResponse{Token: token, Session: sess})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, screens.SettingsFor(sess))
}

// handleSignOut only acknowledges; tokens are stateless and the browser
// drops its copy.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFromContext(r.Context()); ok {
		s.logger(r.Context()).Info(r.Context(), "signed out", "admin", sess.Email)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	scr := screens.NewOverviewScreen(s.svc.Overview, s.opts.Screens)
	defer scr.Close()

	st := scr.Open(r.Context())
	if st.Status == query.StatusError {
		s.fail(w, r, st.Err)
		return
	}
	writeJSON(w, http.StatusOK, st.Data)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	provider := models.ProviderGoogle
	if p := q.Get("provider"); p != "" {
		var err error
		if provider, err = models.ParseProvider(p); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	page, err := pageParam(q.Get("page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	scr := screens.NewUsersScreen(s.svc.Users, s.opts.Screens)
	defer scr.Close()

	if snap := scr.Load(r.Context(), provider); snap.Status == query.StatusError {
		s.fail(w, r, snap.Err)
		return
	}
	scr.Search(q.Get("search"))
	writeJSON(w, http.StatusOK, toList(scr.SetPage(page)))
}

func (s *Server) handleFunctions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"functions": models.EdgeFunctions,
		"modes":     services.ViewModes,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	req, page, err := logsRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	scr := screens.NewLogsScreen(s.svc.Logs, s.opts.Screens)
	defer scr.Close()

	if snap := scr.Load(r.Context(), req); snap.Status == query.StatusError {
		s.fail(w, r, snap.Err)
		return
	}
	scr.Search(r.URL.Query().Get("search"))
	writeJSON(w, http.StatusOK, toList(scr.SetPage(page)))
}

func (s *Server) handleTodayErrors(w http.ResponseWriter, r *http.Request) {
	v := screens.NewErrorsView(s.svc.Logs, s.opts.Screens)
	defer v.Close()

	st := v.Load(r.Context(), struct{}{})
	if st.Status == query.StatusError {
		s.fail(w, r, st.Err)
		return
	}
	items := st.Data
	if items == nil {
		items = []models.EdgeFunctionLog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	fn := r.URL.Query().Get("function")
	if !models.IsEdgeFunction(fn) {
		s.fail(w, r, fmt.Errorf("%w: unknown function %q", common.ErrValidation, fn))
		return
	}

	v := screens.NewRecentView(s.svc.Logs, s.opts.Screens)
	defer v.Close()

	st := v.Load(r.Context(), fn)
	if st.Status == query.StatusError {
		s.fail(w, r, st.Err)
		return
	}
	items := st.Data
	if items == nil {
		items = []models.EdgeFunctionLog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"function": fn, "count": len(items), "items": items})
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := pageParam(q.Get("page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	scr := screens.NewEmailsScreen(s.svc.Emails, s.opts.Screens)
	defer scr.Close()

	snap := scr.Load(r.Context(), screens.EmailsRequest{Term: strings.TrimSpace(q.Get("search")), Page: page})
	if snap.Status == query.StatusError {
		s.fail(w, r, snap.Err)
		return
	}
	writeJSON(w, http.StatusOK, toList(snap))
}

func pageParam(v string) (int, error) {
	if v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: page must be a positive integer", common.ErrValidation)
	}
	return n, nil
}

func logsRequest(r *http.Request) (screens.LogsRequest, int, error) {
	q := r.URL.Query()
	fn := q.Get("function")
	if !models.IsEdgeFunction(fn) {
		return screens.LogsRequest{}, 0, fmt.Errorf("%w: unknown function %q", common.ErrValidation, fn)
	}

	mode := services.ViewToday
	if m := q.Get("mode"); m != "" {
		var err error
		if mode, err = services.ParseViewMode(m); err != nil {
			return screens.LogsRequest{}, 0, err
		}
	}

	req := screens.LogsRequest{Function: fn, Mode: mode}
	if mode == services.ViewCustom {
		from, err := dayParam(q.Get("from"), "from")
		if err != nil {
			return screens.LogsRequest{}, 0, err
		}
		to, err := dayParam(q.Get("to"), "to")
		if err != nil {
			return screens.LogsRequest{}, 0, err
		}
		req.Custom = timex.DateRange{Start: from, End: to}
	}

	page, err := pageParam(q.Get("page"))
	if err != nil {
		return screens.LogsRequest{}, 0, err
	}
	return req, page, nil
}

func dayParam(v, name string) (time.Time, error) {
	t, err := time.ParseInLocation(timex.DayLayout, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be %s", common.ErrValidation, name, timex.DayLayout)
	}
	return t, nil
}
