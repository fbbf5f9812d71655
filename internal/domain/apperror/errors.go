// Package apperror defines the failure taxonomy returned by the auth use
// cases. Failures are go-errors values: a category, a stable text code, an
// HTTP status and a message that is safe to show to callers.
package apperror

import (
	goerrors "github.com/goliatone/go-errors"
)

// Error is the rich error every auth flow returns.
type Error = goerrors.Error

type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindExpired        Kind = "expired"
	KindInternal       Kind = "internal"
)

// TextCodeInternal marks infrastructure failures.
const TextCodeInternal = "internal_error"

var kindCategories = map[Kind]goerrors.Category{
	KindValidation:     goerrors.CategoryValidation,
	KindNotFound:       goerrors.CategoryNotFound,
	KindConflict:       goerrors.CategoryConflict,
	KindAuthentication: goerrors.CategoryAuth,
	KindAuthorization:  goerrors.CategoryAuthz,
	KindExpired:        goerrors.CategoryBadInput,
	KindInternal:       goerrors.CategoryInternal,
}

var kindStatus = map[Kind]int{
	KindValidation:     goerrors.CodeBadRequest,
	KindExpired:        goerrors.CodeBadRequest,
	KindNotFound:       goerrors.CodeNotFound,
	KindConflict:       goerrors.CodeConflict,
	KindAuthentication: goerrors.CodeUnauthorized,
	KindAuthorization:  goerrors.CodeForbidden,
	KindInternal:       goerrors.CodeInternal,
}

// New builds a domain failure. Treat the result as immutable; use
// WithMessage to vary the text.
func New(kind Kind, code, message string) *Error {
	return goerrors.New(message, kindCategories[kind]).
		WithTextCode(code).
		WithCode(HTTPStatus(kind))
}

// WithMessage returns a copy of e carrying a different human message.
func WithMessage(e *Error, msg string) *Error {
	cp := e.Clone()
	cp.Message = msg
	return cp
}

// Internal wraps an infrastructure failure. The cause stays available for
// logging but Message is always generic.
func Internal(err error) *Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "an internal error occurred").
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}

// As extracts the rich error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if err == nil || !goerrors.As(err, &e) || e == nil {
		return nil, false
	}
	return e, true
}

// Is reports whether err carries target's text code. Sentinels are matched
// by code so copies made with WithMessage still match.
func Is(err error, target *Error) bool {
	e, ok := As(err)
	return ok && target != nil && e.TextCode == target.TextCode
}

// IsDomain reports whether err is an expected auth outcome rather than an
// infrastructure failure.
func IsDomain(err error) bool {
	e, ok := As(err)
	return ok && e.Category != goerrors.CategoryInternal
}

// CodeOf returns err's text code, TextCodeInternal for foreign errors.
func CodeOf(err error) string {
	if e, ok := As(err); ok && e.TextCode != "" {
		return e.TextCode
	}
	return TextCodeInternal
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	e, ok := As(err)
	if !ok {
		return KindInternal
	}
	for k, c := range kindCategories {
		if c == e.Category {
			return k
		}
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(k Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return goerrors.CodeInternal
}

// StatusOf returns the HTTP status carried by err.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Code != 0 {
		return e.Code
	}
	return HTTPStatus(KindOf(err))
}
