// ABOUTME: Package documentation for the HTTP API layer
// ABOUTME: Describes routing conventions, status mapping, and the JSON contract

// Package server exposes the dashboard data layer as a JSON HTTP API.
//
// Every /api route sits behind the auth middleware; /health does not.
// Handlers translate between the wire contract (camelCase fields,
// epoch-millisecond timestamps) and the store's entity types, and map
// store errors onto statuses: *store.ValidationError becomes 400,
// store.ErrNotFound becomes 404, and external-key point lookups
// (agents by agent id, products by slug) return 404 on a nil result.
// List endpoints never error on empty collections.
//
// The server holds no mutable state of its own. The backing store is
// chosen once at startup; handlers are safe for concurrent use.
package server
