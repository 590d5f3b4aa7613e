package order

import "errors"

// Sentinel errors for the order lifecycle. Callers wrap them with
// fmt.Errorf("%w: ...") and handlers map them onto HTTP codes.
var (
	ErrBadRequest   = errors.New("bad request")   // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrForbidden    = errors.New("forbidden")     // 403
	ErrInvalidState = errors.New("invalid state") // 409
)
