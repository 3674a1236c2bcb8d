// Package cli is the terminal companion of the opsdash web dashboard.
//
// On start the persisted session is restored silently; without one the
// operator is asked to sign in. The REPL then renders the dashboard screens:
//
//	overview                       today, month and year stats, 30-day chart
//	users [google|microsoft]       provider users with their subscription
//	logs <function> [mode] [from to]
//	errors                         today's failed edge function calls
//	emails [term]                  LLM priority comparison, server-side pages
//	search <term>                  filter the current list screen
//	page <n> | next | prev         navigate the current list screen
//	show <n>                       details of row n of the current page
//	refresh                        re-run the current screen's query
//	settings | logout | exit
//
// Errors are printed inline under the screen that produced them.
package cli
