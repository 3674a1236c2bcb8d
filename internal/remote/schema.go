package remote

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/opsdash/internal/common"
)

// Resource names of the hosted schema.
const (
	AdminUsers             = "admin_users"
	Users                  = "users"
	UserPricingPlans       = "user_pricing_plans"
	GoogleUsers            = "google_users"
	MicrosoftUsers         = "microsoft_users"
	GoogleSubscriptions    = "google_subscriptions"
	MicrosoftSubscriptions = "microsoft_subscriptions"
	EdgeFunctionLogs       = "edge_function_logs"
	EmailPrioLogs          = "email_prio_logs"
	StripeTransactions     = "stripe_transactions"
)

// ProcEmailCountsByDate returns (date, count) rows for the last days_ago days.
const ProcEmailCountsByDate = "get_email_counts_by_date"

var subscriptionColumns = []string{"id", "user_id", "subscription_id", "expiration_date", "active", "disabled_at", "created_at"}

// Schema lists the columns each resource may be queried on.
var Schema = map[string][]string{
	AdminUsers:       {"id", "email", "password", "created_at", "last_login"},
	Users:            {"id", "email", "name", "created_at", "updated_at", "timezone", "analysis_language"},
	UserPricingPlans: {"id", "user_id", "plan_type", "created_at"},
	GoogleUsers: {"id", "user_id", "google_email", "google_oauth2_token", "google_refresh_token",
		"token_expires_at", "created_at", "updated_at"},
	MicrosoftUsers: {"id", "user_id", "microsoft_email", "microsoft_oauth2_token", "microsoft_refresh_token",
		"token_expires_at", "created_at", "updated_at"},
	GoogleSubscriptions:    subscriptionColumns,
	MicrosoftSubscriptions: subscriptionColumns,
	EdgeFunctionLogs:       {"id", "function_name", "created_at", "status", "method", "execution_time", "error", "user_id"},
	EmailPrioLogs: {"id", "created_at", "email_sender", "email_recipient", "email_subject", "email_priority",
		"email_analysis", "email_analysis_bedrock_claude", "email_analysis_openai41mini", "date"},
	StripeTransactions: {"id", "user_id", "amount", "currency", "status", "created_at"},
}

// Procedures maps each callable procedure to its ordered parameter names.
var Procedures = map[string][]string{
	ProcEmailCountsByDate: {"days_ago"},
}

// CheckResource fails with common.ErrUnknownResource for names outside Schema.
func CheckResource(resource string) error {
	if _, ok := Schema[resource]; !ok {
		return fmt.Errorf("%w: %q", common.ErrUnknownResource, resource)
	}
	return nil
}

// CheckColumn fails with common.ErrUnknownColumn for columns outside the
// resource's whitelist.
func CheckColumn(resource, column string) error {
	cols, ok := Schema[resource]
	if !ok {
		return fmt.Errorf("%w: %q", common.ErrUnknownResource, resource)
	}
	if !slices.Contains(cols, column) {
		return fmt.Errorf("%w: %s.%s", common.ErrUnknownColumn, resource, column)
	}
	return nil
}
