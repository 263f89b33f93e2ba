package services

import "time"

type options struct {
	clock func() time.Time
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the source of "now". Each request reads it once.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
