package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// Provider is the mail provider an end user connected.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

// Providers lists every provider in display order.
var Providers = []Provider{ProviderGoogle, ProviderMicrosoft}

// ParseProvider accepts "google" or "microsoft".
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoogle, ProviderMicrosoft:
		return Provider(s), nil
	}
	return "", fmt.Errorf("%w: unknown provider %q", common.ErrValidation, s)
}

// LinkResource is the table linking users to this provider.
func (p Provider) LinkResource() string {
	if p == ProviderMicrosoft {
		return remote.MicrosoftUsers
	}
	return remote.GoogleUsers
}

// SubscriptionResource is the provider's subscription table.
func (p Provider) SubscriptionResource() string {
	if p == ProviderMicrosoft {
		return remote.MicrosoftSubscriptions
	}
	return remote.GoogleSubscriptions
}

// EmailColumn is the provider account email column of LinkResource.
func (p Provider) EmailColumn() string {
	if p == ProviderMicrosoft {
		return "microsoft_email"
	}
	return "google_email"
}

// User is a row of users.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func UserFromRecord(r remote.Record) (User, error) {
	var (
		u   User
		err error
	)
	if u.ID, err = r.String("id"); err != nil {
		return u, malformed(remote.Users, err)
	}
	if u.Email, err = r.String("email"); err != nil {
		return u, malformed(remote.Users, err)
	}
	if u.Name, err = r.NullString("name"); err != nil {
		return u, malformed(remote.Users, err)
	}
	if u.CreatedAt, err = r.Time("created_at"); err != nil {
		return u, malformed(remote.Users, err)
	}
	return u, nil
}

// Subscription is a row of google_subscriptions or microsoft_subscriptions.
type Subscription struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SubscriptionID *string    `json:"subscription_id"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Active         bool       `json:"active"`
	DisabledAt     *time.Time `json:"disabled_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func SubscriptionFromRecord(resource string, r remote.Record) (Subscription, error) {
	var (
		s   Subscription
		err error
	)
	if s.ID, err = r.String("id"); err != nil {
		return s, malformed(resource, err)
	}
	if s.UserID, err = r.String("user_id"); err != nil {
		return s, malformed(resource, err)
	}
	if s.SubscriptionID, err = r.NullString("subscription_id"); err != nil {
		return s, malformed(resource, err)
	}
	if s.ExpirationDate, err = r.NullTime("expiration_date"); err != nil {
		return s, malformed(resource, err)
	}
	if s.Active, err = r.BoolOr("active", false); err != nil {
		return s, malformed(resource, err)
	}
	if s.DisabledAt, err = r.NullTime("disabled_at"); err != nil {
		return s, malformed(resource, err)
	}
	if s.CreatedAt, err = r.Time("created_at"); err != nil {
		return s, malformed(resource, err)
	}
	return s, nil
}

// ProviderUser is an end user linked to a provider, with a pricing plan and
// the subscription chosen for display.
type ProviderUser struct {
	User

	Provider Provider `json:"provider"`

	// PlanType is the user's pricing plan; nil shows as "No Plan".
	PlanType *string `json:"plan_type"`

	// ProviderEmail is the address of the linked provider account.
	ProviderEmail *string `json:"provider_email"`

	// Subscription is nil when the user never subscribed.
	Subscription *Subscription `json:"subscription"`
}

// SearchFields are matched by the users screen filter.
func (u ProviderUser) SearchFields() []string {
	fields := []string{u.ID, u.Email}
	if u.Name != nil {
		fields = append(fields, *u.Name)
	}
	if id := u.SubscriptionID(); id != "" {
		fields = append(fields, id)
	}
	return fields
}

// SubscriptionID returns the provider subscription id or "".
func (u ProviderUser) SubscriptionID() string {
	if u.Subscription == nil || u.Subscription.SubscriptionID == nil {
		return ""
	}
	return *u.Subscription.SubscriptionID
}

// Active reports whether the displayed subscription is active.
func (u ProviderUser) Active() bool {
	return u.Subscription != nil && u.Subscription.Active
}

// Expired reports whether the displayed subscription's expiration date is
// before now.
func (u ProviderUser) Expired(now time.Time) bool {
	if u.Subscription == nil || u.Subscription.ExpirationDate == nil {
		return false
	}
	return u.Subscription.ExpirationDate.Before(now)
}

// Plan returns the plan type or "No Plan".
func (u ProviderUser) Plan() string {
	if u.PlanType == nil || *u.PlanType == "" {
		return "No Plan"
	}
	return *u.PlanType
}
