package store

import "critiq/internal/platform/logger"

// Option adjusts a Store while Open assembles it
type Option func(*Store) error

// WithLogger routes store and backend logging through log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
