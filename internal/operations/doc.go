// Package operations runs a scan across accounts.
//
// Core Components:
//
// Scanner: opens one connection per account and inspects each folder task
// in declaration order. A failed connection turns every task of the account
// into an error outcome sharing one detail; a panic inside one folder is
// contained to that folder.
//
// Manager: fans accounts out to a bounded worker pool and collects their
// outcomes by declaration position, so the RunResult order never depends on
// which account finished first. A cancelled run returns the context error
// and no result.
//
// RunTracer: optional spans and metrics for runs, accounts and folders.
//
// FilterAccounts narrows the account list before a run; the Manager itself
// never filters.
package operations
