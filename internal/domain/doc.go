// Package domain contains the marketplace's core entities (books, listings,
// listing images, requests, profiles and provider-managed users), their
// enumerations and status machines, and the sentinel errors shared by the
// rest of the application. It does not depend on any storage or transport
// package.
package domain
