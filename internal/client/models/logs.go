package models

import (
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// EdgeFunctions is the catalog of backend functions whose invocations are
// written to edge_function_logs, in display order.
var EdgeFunctions = []string{
	"stripe-webhook",
	"create-checkout",
	"get-invoice",
	"cancel-subscription",
	"deactivate-google-subscription",
	"create-google-subscription",
	"google-api-manage-mail-sub-pub",
	"google-users",
	"microsoft_oauth2_token_exchange_dv",
	"microsoft_refresh_oauth2_token_dv",
	"refresh_mail_subscription_upon_microsoft_notification_dv",
	"check_microsoft_subscription_expiration_dv",
	"openai-tiktoken",
	"emailassist-microsoft-prio",
	"sendMailjetEmail",
}

// IsEdgeFunction reports whether name is in the catalog.
func IsEdgeFunction(name string) bool {
	return slices.Contains(EdgeFunctions, name)
}

// EdgeFunctionLog is a row of edge_function_logs.
type EdgeFunctionLog struct {
	ID           string    `json:"id"`
	FunctionName string    `json:"function_name"`
	CreatedAt    time.Time `json:"created_at"`
	Status       int       `json:"status"`
	Method       string    `json:"method"`

	// ExecutionTime is in milliseconds.
	ExecutionTime float64 `json:"execution_time"`

	Error  *string `json:"error"`
	UserID *string `json:"user_id"`
}

func EdgeFunctionLogFromRecord(r remote.Record) (EdgeFunctionLog, error) {
	var (
		l   EdgeFunctionLog
		err error
	)
	if l.ID, err = r.String("id"); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	if l.FunctionName, err = r.String("function_name"); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	if l.CreatedAt, err = r.Time("created_at"); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	status, err := r.Int64Or("status", 0)
	if err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	l.Status = int(status)
	if l.Method, err = r.StringOr("method", ""); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	if !r.Null("execution_time") {
		if l.ExecutionTime, err = r.Float64("execution_time"); err != nil {
			return l, malformed(remote.EdgeFunctionLogs, err)
		}
	}
	if l.Error, err = r.NullString("error"); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	if l.UserID, err = r.NullString("user_id"); err != nil {
		return l, malformed(remote.EdgeFunctionLogs, err)
	}
	return l, nil
}

// Failed reports whether the invocation ended with an error.
func (l EdgeFunctionLog) Failed() bool {
	return l.Error != nil || l.Status >= 400
}

// SearchFields are matched by the logs screen filter.
func (l EdgeFunctionLog) SearchFields() []string {
	fields := []string{l.Method, strconv.Itoa(l.Status)}
	if l.Error != nil {
		fields = append(fields, *l.Error)
	}
	if l.UserID != nil {
		fields = append(fields, *l.UserID)
	}
	return fields
}
