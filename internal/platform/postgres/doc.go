// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, the embedded goose
// migrations that create the marketplace schema, and the mapping from driver
// errors onto store sentinel errors.
package postgres
