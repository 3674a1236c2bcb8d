// Package remote describes reads against the hosted backend and defines the
// Store contract the dashboard screens query through.
//
// A ListQuery names one whitelisted resource plus equality/range/null/ilike
// predicates, ordering and paging. Stores answer with a slice of Record
// values, which callers convert once into typed models.
//
// Every failure crossing the Store boundary is a *common.QueryError.
package remote
