package cif

import "log/slog"

// Option configures a call to Parse, Read or ReadFile.
type Option func(*parser)

// WithLogger makes the parser log its progress at debug level and every
// Warning at warn level. A nil logger disables logging, which is the
// default.
func WithLogger(l *slog.Logger) Option {
	return func(p *parser) {
		if l != nil {
			p.log = l
		}
	}
}
