package report

import "github.com/okian/demandgen/pkg/logger"

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithLogger sets a custom logger for the reporter.
func WithLogger(log logger.Logger) Option {
	return func(r *Reporter) {
		if log != nil {
			r.logger = log
		}
	}
}

// WithDigestHook is called with every digest the schedule produces.
func WithDigestHook(fn func(Digest)) Option {
	return func(r *Reporter) {
		r.hook = fn
	}
}
