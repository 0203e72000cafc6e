// Package subscription holds the per-tenant account state and the canonical
// status resolver.
//
// The stored status column is only an optimization hint refreshed by the
// reconciliation sweep. Every read path that needs the subscription state
// calls Resolve, a pure function of the account's timestamps and a caller
// supplied now, so a stale persisted flag can never admit an expired tenant:
//
//	res := subscription.Resolve(account, time.Now())
//	if res.Status == subscription.StatusExpired {
//		// deny, whatever account.Status claims
//	}
//
// The upgrade history is an append-only audit trail; stores reject nothing on
// read but must never mutate history rows.
package subscription
