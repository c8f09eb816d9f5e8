package lint

import (
	"errors"
	"fmt"
)

// ConfigError marks a fatal configuration problem: an unknown rule code,
// an unknown option key, a malformed or missing baseline, an invalid
// level name. Configuration errors abort the run before any file
// processing begins; every other failure degrades to a per-file or
// per-rule diagnostic.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
