package model

import "errors"

// ErrInvalidParameter marks request validation failures. Handlers map it to a
// 4xx response; everything else is treated as an internal error.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrInvalidConfig marks configuration errors detected at startup.
var ErrInvalidConfig = errors.New("invalid configuration")
