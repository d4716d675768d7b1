package entity

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidReference   = errors.New("referenced record does not exist")
)

// ReferenceError names the request field whose id does not resolve.
// errors.Is(err, ErrInvalidReference) holds for it.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return e.Field + ": " + ErrInvalidReference.Error()
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}
