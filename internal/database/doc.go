// Package database provides the Postgres connection pool used to mirror
// admitted tokens into Supabase.
//
// Supabase exposes a plain Postgres endpoint, so the pool is a regular
// pgxpool.Pool; either a full connection URL or discrete fields are accepted.
package database
