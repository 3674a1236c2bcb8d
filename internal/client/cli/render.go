package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/listing"
	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/common"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func errorText(err error) string {
	var qe *common.QueryError
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	case errors.As(err, &qe):
		return "query failed: " + qe.Error()
	}
	return err.Error()
}

func (a *App) inlineError(err error) {
	fmt.Fprintf(a.out, "error: %s\n", errorText(err))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(models.DisplayTimeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// renderFooter prints the page window, marking the current page button.
func renderFooter(w io.Writer, win listing.PageWindow, buttons []int, term string) {
	labels := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if b == win.CurrentPage {
			labels = append(labels, "["+strconv.Itoa(b)+"]")
		} else {
			labels = append(labels, strconv.Itoa(b))
		}
	}
	fmt.Fprintf(w, "Page %d/%d, %d rows  %s", win.CurrentPage, win.TotalPages, win.TotalCount, strings.Join(labels, " "))
	if term != "" {
		fmt.Fprintf(w, "  search: %q", term)
	}
	fmt.Fprintln(w)
}

func renderOverview(w io.Writer, ov services.Overview) {
	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tNEW USERS\tEMAILS\tREVENUE")
	for _, row := range []struct {
		name string
		st   models.Stats
	}{{"Today", ov.Today}, {"This month", ov.Month}, {"This year", ov.Year}} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", row.name, row.st.NewUsers, row.st.Emails, dollars(row.st.RevenueCents))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nActive subscribers: %d (Google %d, Microsoft %d)\n\n",
		ov.Active.Total(), ov.Active.Google, ov.Active.Microsoft)

	var peak int64
	for _, p := range ov.Daily {
		peak = max(peak, p.Emails)
	}
	tw = newTable(w)
	fmt.Fprintln(tw, "DAY\tEMAILS\tREVENUE\t")
	for _, p := range ov.Daily {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", int(p.Emails*30/peak))
		}
		fmt.Fprintf(tw, "%s\t%d\t$%.2f\t%s\n", p.Day, p.Emails, p.Revenue, bar)
	}
	_ = tw.Flush()
}

func renderUsers(w io.Writer, users []models.ProviderUser, offset int, now time.Time) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tEMAIL\tNAME\tPLAN\tSUBSCRIPTION\tSTATUS\tCREATED")
	for i, u := range users {
		status := "-"
		if u.Subscription != nil {
			status = "inactive"
			if u.Active() {
				status = "active"
			}
			if u.Expired(now) {
				status += ", expired"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			offset+i+1, u.Email, deref(u.Name), u.Plan(), truncate(u.SubscriptionID(), 24), status, formatTime(u.CreatedAt))
	}
	_ = tw.Flush()
}

func renderUser(w io.Writer, u models.ProviderUser, now time.Time) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Name\t%s\n", deref(u.Name))
	fmt.Fprintf(tw, "%s account\t%s\n", u.Provider, deref(u.ProviderEmail))
	fmt.Fprintf(tw, "Plan\t%s\n", u.Plan())
	fmt.Fprintf(tw, "Created\t%s\n", formatTime(u.CreatedAt))
	if s := u.Subscription; s != nil {
		fmt.Fprintf(tw, "Subscription\t%s\n", deref(s.SubscriptionID))
		fmt.Fprintf(tw, "Active\t%t\n", s.Active)
		fmt.Fprintf(tw, "Expires\t%s (expired: %t)\n", formatTimePtr(s.ExpirationDate), u.Expired(now))
		fmt.Fprintf(tw, "Disabled\t%s\n", formatTimePtr(s.DisabledAt))
	} else {
		fmt.Fprintln(tw, "Subscription\tnone")
	}
	_ = tw.Flush()
}

func renderLogs(w io.Writer, logs []models.EdgeFunctionLog, offset int, withFunction bool) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No logs.")
		return
	}
	tw := newTable(w)
	if withFunction {
		fmt.Fprintln(tw, "#\tTIME\tFUNCTION\tSTATUS\tMETHOD\tMS\tERROR")
	} else {
		fmt.Fprintln(tw, "#\tTIME\tSTATUS\tMETHOD\tMS\tERROR")
	}
	for i, l := range logs {
		fn := ""
		if withFunction {
			fn = l.FunctionName + "\t"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s%d\t%s\t%.0f\t%s\n",
			offset+i+1, formatTime(l.CreatedAt), fn, l.Status, l.Method, l.ExecutionTime, truncate(deref(l.Error), 60))
	}
	_ = tw.Flush()
}

func renderLog(w io.Writer, l models.EdgeFunctionLog) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", l.ID)
	fmt.Fprintf(tw, "Function\t%s\n", l.FunctionName)
	fmt.Fprintf(tw, "Time\t%s\n", formatTime(l.CreatedAt))
	fmt.Fprintf(tw, "Status\t%d\n", l.Status)
	fmt.Fprintf(tw, "Method\t%s\n", l.Method)
	fmt.Fprintf(tw, "Execution\t%.1f ms\n", l.ExecutionTime)
	fmt.Fprintf(tw, "User\t%s\n", deref(l.UserID))
	_ = tw.Flush()
	if l.Error != nil {
		fmt.Fprintf(w, "\nError:\n%s\n", *l.Error)
	}
}

func scoreText(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func renderEmails(w io.Writer, emails []models.EmailLog, offset int) {
	if len(emails) == 0 {
		fmt.Fprintln(w, "No emails.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tDATE\tSUBJECT\tPRIORITY\tDEFAULT\tOPENAI\tCLAUDE\t")
	for i, e := range emails {
		s := e.Scores()
		flag := ""
		if e.HasDifferentPriorities() {
			flag = "differs"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			offset+i+1, formatTime(e.CreatedAt), truncate(e.Subject, 48), e.Priority,
			scoreText(s[0]), scoreText(s[1]), scoreText(s[2]), flag)
	}
	_ = tw.Flush()
}

func renderEmail(w io.Writer, e models.EmailLog) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Date\t%s\n", formatTime(e.CreatedAt))
	fmt.Fprintf(tw, "From\t%s\n", e.Sender)
	fmt.Fprintf(tw, "To\t%s\n", e.Recipient)
	fmt.Fprintf(tw, "Subject\t%s\n", e.Subject)
	fmt.Fprintf(tw, "Priority\t%s\n", e.Priority)
	_ = tw.Flush()

	s := e.Scores()
	for i, a := range []struct {
		name string
		text *string
	}{{"Default analysis", e.Analysis}, {"OpenAI analysis", e.AnalysisOpenAI}, {"Claude analysis", e.AnalysisClaude}} {
		fmt.Fprintf(w, "\n%s (score %s):\n%s\n", a.name, scoreText(s[i]), deref(a.text))
	}
	if e.HasDifferentPriorities() {
		fmt.Fprintln(w, "\nThe models disagree on the priority.")
	}
}
