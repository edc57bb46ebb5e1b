package types

import "errors"

var ErrNotFound = errors.New("requested item not found")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrValidation = errors.New("validation failed")
