package exception

import "errors"

var (
	ErrNilInstance = errors.New("nil instance")
	ErrConfig      = errors.New("invalid config")
)
