// Package history persists a local journal of shipping attempts in SQLite.
//
// The journal exists for operators: `logship history` renders it, and a row
// is recorded per attempt regardless of transport health. It is never read on
// the shipping path, so a journal failure can only degrade bookkeeping, not
// the shipping outcome.
package history
