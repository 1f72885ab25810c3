package timer

import "errors"

// ErrUnauthenticated is returned when an operation arrives without a
// resolved tenant+user identity. A boundary concern: the core never guesses
// an identity.
var ErrUnauthenticated = errors.New("unauthenticated")
