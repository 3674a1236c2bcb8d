// Package models defines the typed rows the dashboard renders. Every remote
// record is converted exactly once, at the store boundary, by one of the
// *FromRecord constructors; a conversion failure is reported as a
// common.QueryError wrapping common.ErrMalformedRecord.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// AdminUser is a row of admin_users.
type AdminUser struct {
	// ID is the account identifier (uuid text).
	ID string `json:"id"`

	// Email is the login of the administrator.
	Email string `json:"email"`

	// Password is the stored credential: a bcrypt hash or a legacy plain value.
	Password string `json:"-"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// LastLogin is nil when the administrator never signed in.
	LastLogin *time.Time `json:"last_login"`
}

func AdminUserFromRecord(r remote.Record) (AdminUser, error) {
	var (
		a   AdminUser
		err error
	)
	if a.ID, err = r.String("id"); err != nil {
		return a, malformed(remote.AdminUsers, err)
	}
	if a.Email, err = r.String("email"); err != nil {
		return a, malformed(remote.AdminUsers, err)
	}
	if a.Password, err = r.StringOr("password", ""); err != nil {
		return a, malformed(remote.AdminUsers, err)
	}
	if a.CreatedAt, err = r.Time("created_at"); err != nil {
		return a, malformed(remote.AdminUsers, err)
	}
	if a.LastLogin, err = r.NullTime("last_login"); err != nil {
		return a, malformed(remote.AdminUsers, err)
	}
	return a, nil
}

// DisplayName is the local part of the email address.
func (a AdminUser) DisplayName() string {
	name, _, _ := strings.Cut(a.Email, "@")
	return name
}

// LastLoginText formats LastLogin for display, or "Never".
func (a AdminUser) LastLoginText() string {
	if a.LastLogin == nil {
		return "Never"
	}
	return a.LastLogin.Local().Format(DisplayTimeLayout)
}

// DisplayTimeLayout is used wherever a timestamp is shown to the operator.
const DisplayTimeLayout = "2006-01-02 15:04:05"

func malformed(resource string, err error) error {
	return common.NewQueryError("decode", resource, err)
}
