// Package repository defines the awards data store interface and errors.
package repository

import "time"

// Default Postgres connection settings.
const (
	defaultMaxOpenConns = 16
	defaultPingTimeout  = 5 * time.Second
)

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithPingTimeout sets the startup connectivity check timeout.
func WithPingTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}
