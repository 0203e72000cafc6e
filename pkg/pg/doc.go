// Package pg provides PostgreSQL plumbing shared by all stores: pool
// construction with retry, goose migrations bridged from pgx, health checks,
// error classification helpers, and a context-propagated Transactor that lets
// multiple stores join one transaction.
package pg
