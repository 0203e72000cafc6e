// Package reconcile runs the periodic background sweep: expiring lapsed
// subscriptions, flagging overdue invoices and repairing usage counters that
// drifted from the authoritative row counts. A Redis lease keeps the sweep
// single-flight when several instances run.
package reconcile
