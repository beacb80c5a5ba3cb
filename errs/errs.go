// Package errs defines the single error vocabulary shared by the ADQL
// checker, translator, and UWS job runtime, so a caller at any layer can
// switch on one Kind enum instead of per-package sentinel errors.
package errs

import "fmt"

// Kind classifies an Error. Each value maps to one TAP/UWS fault condition.
type Kind int

const (
	// ADQL parsing and resolution.
	LexError Kind = iota
	SyntaxError
	UnresolvedTable
	UnresolvedColumn
	AmbiguousColumn
	UnknownFunction
	ArityMismatch
	TypeMismatch
	FeatureForbidden
	AmbiguousOrderPosition
	UnsupportedByDialect
	InvalidLiteral

	// UWS job lifecycle.
	JobNotFound
	PhaseInvalid
	ParamRejected
	QuotaExceeded
	TransientBackendError
	FatalBackendError

	// Backup/restore.
	BackupIOError
	BackupFormatError
)

var kindNames = [...]string{
	LexError:               "LexError",
	SyntaxError:            "SyntaxError",
	UnresolvedTable:        "UnresolvedTable",
	UnresolvedColumn:       "UnresolvedColumn",
	AmbiguousColumn:        "AmbiguousColumn",
	UnknownFunction:        "UnknownFunction",
	ArityMismatch:          "ArityMismatch",
	TypeMismatch:           "TypeMismatch",
	FeatureForbidden:       "FeatureForbidden",
	AmbiguousOrderPosition: "AmbiguousOrderPosition",
	UnsupportedByDialect:   "UnsupportedByDialect",
	InvalidLiteral:         "InvalidLiteral",
	JobNotFound:            "JobNotFound",
	PhaseInvalid:           "PhaseInvalid",
	ParamRejected:          "ParamRejected",
	QuotaExceeded:          "QuotaExceeded",
	TransientBackendError:  "TransientBackendError",
	FatalBackendError:      "FatalBackendError",
	BackupIOError:          "BackupIOError",
	BackupFormatError:      "BackupFormatError",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UnknownKind"
}

// defaultHTTPStatus maps each Kind to the TAP servlet's expected HTTP
// status, carried here so a future HTTP surface doesn't need its own
// parallel mapping; this package otherwise has no servlet knowledge.
var defaultHTTPStatus = [...]int{
	LexError:               400,
	SyntaxError:            400,
	UnresolvedTable:        400,
	UnresolvedColumn:       400,
	AmbiguousColumn:        400,
	UnknownFunction:        400,
	ArityMismatch:          400,
	TypeMismatch:           400,
	FeatureForbidden:       400,
	AmbiguousOrderPosition: 400,
	UnsupportedByDialect:   400,
	InvalidLiteral:         400,
	JobNotFound:            404,
	PhaseInvalid:           409,
	ParamRejected:          400,
	QuotaExceeded:          403,
	TransientBackendError:  503,
	FatalBackendError:      500,
	BackupIOError:          500,
	BackupFormatError:      500,
}

// Error is the single error type produced by the checker, translator, and
// UWS packages.
type Error struct {
	Kind        Kind
	Message     string
	DetailsHref string // optional link to extended error documentation
	HTTPStatus  int    // 0 means "use Kind's default"

	cause error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns e's HTTP status: the explicit HTTPStatus if set, else
// Kind's default.
func (e *Error) Status() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if int(e.Kind) >= 0 && int(e.Kind) < len(defaultHTTPStatus) {
		return defaultHTTPStatus[e.Kind]
	}
	return 500
}

// New creates an Error of the given Kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given Kind that also carries cause for
// errors.Unwrap/errors.Is chains.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
