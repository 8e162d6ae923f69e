package config

import "errors"

// ErrInvalid marks a rejected configuration change. The live configuration is
// unchanged whenever Apply returns an error wrapping this.
var ErrInvalid = errors.New("invalid configuration")
