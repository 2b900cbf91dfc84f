// Package identity applies the marketplace's account rules on top of the
// hosted identity provider: campus-only signup, rejection of unverified
// logins, verification status lookups and bearer token verification.
package identity
