// Package sales records direct point-of-sale transactions: stock is
// decremented, the sale persisted and revenue recognized in one step, with no
// invoice lifecycle in between.
package sales
