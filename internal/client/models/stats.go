package models

import (
	"time"

	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// StripeTransaction is a row of stripe_transactions. Amount is in cents.
type StripeTransaction struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func StripeTransactionFromRecord(r remote.Record) (StripeTransaction, error) {
	var (
		t   StripeTransaction
		err error
	)
	if !r.Null("id") {
		if t.ID, err = r.String("id"); err != nil {
			return t, malformed(remote.StripeTransactions, err)
		}
	}
	if t.Amount, err = r.Int64Or("amount", 0); err != nil {
		return t, malformed(remote.StripeTransactions, err)
	}
	if t.CreatedAt, err = r.Time("created_at"); err != nil {
		return t, malformed(remote.StripeTransactions, err)
	}
	return t, nil
}

// DailyEmailCount is one row of get_email_counts_by_date.
type DailyEmailCount struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

func DailyEmailCountFromRecord(r remote.Record) (DailyEmailCount, error) {
	var (
		d   DailyEmailCount
		err error
	)
	if d.Date, err = r.Time("date"); err != nil {
		return d, malformed(remote.ProcEmailCountsByDate, err)
	}
	if d.Count, err = r.Int64("count"); err != nil {
		return d, malformed(remote.ProcEmailCountsByDate, err)
	}
	return d, nil
}

// Stats summarizes activity over a date range.
type Stats struct {
	NewUsers int `json:"new_users"`
	Emails   int `json:"emails"`

	// RevenueCents is the sum of transaction amounts.
	RevenueCents int64 `json:"revenue_cents"`
}

// Revenue returns the revenue in dollars.
func (s Stats) Revenue() float64 {
	return float64(s.RevenueCents) / 100
}

// DailyPoint is one day of the overview chart.
type DailyPoint struct {
	// Day is formatted as timex.DayLayout.
	Day     string  `json:"day"`
	Emails  int64   `json:"emails"`
	Revenue float64 `json:"revenue"`
}

// ActiveSubscribers counts subscriptions that are active and not disabled.
type ActiveSubscribers struct {
	Google    int `json:"google"`
	Microsoft int `json:"microsoft"`
}

func (a ActiveSubscribers) Total() int {
	return a.Google + a.Microsoft
}
