// Package inventory owns product records and the stock-commitment invariant:
// quantity on hand never goes negative, and a multi-item commit either lands
// fully or not at all, reporting every shortfall in one error.
package inventory
