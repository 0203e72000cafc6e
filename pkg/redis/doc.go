// Package redis provides Redis connection plumbing and a lease lock used to
// keep the reconciliation sweep single-flight across instances.
package redis
