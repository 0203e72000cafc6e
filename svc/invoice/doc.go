// Package invoice implements the invoice lifecycle over the shared transition
// table: draft, sent, paid, overdue, cancelled. Creating an invoice consumes a
// usage-limit slot and commits stock up front; paying records revenue exactly
// once; cancelling an unpaid invoice releases the stock it held.
package invoice
