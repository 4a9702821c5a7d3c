// Package store provides persistent storage for the mission-control
// dashboard using SQLite.
//
// # Architecture
//
// The package exposes a single Store interface covering every
// collection the dashboard reads and writes: system status, agents,
// cron jobs, tasks, content drafts, calendar events, chat, clients,
// ecosystem products, and the activity feed.
//
// Two implementations exist:
//
//   - SQLiteStore: durable storage backed by modernc.org/sqlite
//   - MemoryStore: the in-process fallback used when no database is
//     configured; identical semantics, nothing survives a restart
//
// The implementation is selected once at startup. Handlers hold a
// Store and never branch on the backing.
//
// # Validation
//
// Every mutation validates its argument before touching storage. The
// Validate* functions enforce required fields and the closed variant
// sets (task status, draft platform, chat channel, and so on) and
// return *ValidationError, which the HTTP layer maps to a 400.
//
// # Error Handling
//
//   - ErrNotFound: a patch, delete, or id lookup targeted a missing record
//   - point lookups by external key (agent id, product slug) return
//     (nil, nil) on a miss instead of an error
//
// All methods accept context.Context for cancellation support.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA busy_timeout=5000;
//
// Timestamps are stored as RFC 3339 text in UTC. List orderings use
// the id as a tie-breaker so records created in the same instant come
// back in a stable order.
//
// # Testing
//
// Use NewMemoryStore() for unit tests, or NewSQLiteStore(":memory:")
// for integration tests with real SQLite.
package store
