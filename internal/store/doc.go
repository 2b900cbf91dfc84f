// Package store defines interfaces for data persistence operations on books,
// listings, listing images, requests and profiles. These interfaces abstract
// the underlying data storage mechanism from the application's core logic,
// and every store can be rebound to a transaction with WithTx so services can
// compose several writes into one unit of work.
package store
