package ensemble

import "fmt"

// ---------------------------------------------------------------------------
// Error kinds
// ---------------------------------------------------------------------------

// ErrorKind classifies registry failures so callers can react to the
// category without parsing messages.
type ErrorKind int

const (
	// ErrDuplicateName: a part with the same name already exists.
	ErrDuplicateName ErrorKind = iota
	// ErrNotFound: no part or ensemble with the given name.
	ErrNotFound
	// ErrAmbiguousPart: a prefix matched more than one part.
	ErrAmbiguousPart
	// ErrNotAnEnsemble: a resolved command is not a registered ensemble.
	ErrNotAnEnsemble
	// ErrInstallError: the host could not create a command or namespace.
	ErrInstallError
	// ErrUnknownVerb: the definition language saw an unrecognized verb.
	ErrUnknownVerb
	// ErrMalformedPath: an ensemble path was empty or unparsable.
	ErrMalformedPath
	// ErrInternal: a registry-consistency invariant was violated.
	ErrInternal
)

var kindNames = map[ErrorKind]string{
	ErrDuplicateName: "duplicate name",
	ErrNotFound:      "not found",
	ErrAmbiguousPart: "ambiguous part",
	ErrNotAnEnsemble: "not an ensemble",
	ErrInstallError:  "install error",
	ErrUnknownVerb:   "unknown verb",
	ErrMalformedPath: "malformed path",
	ErrInternal:      "internal error",
}

// String returns the kind's human-readable label.
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is a structured registry failure. Candidates is populated for
// ErrAmbiguousPart with the matching part names in store order.
type Error struct {
	Kind       ErrorKind
	Msg        string
	Candidates []string
	Err        error
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes a wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is matching against another *Error by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Msg == ""
}

// KindOf returns the error's kind, or ok=false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	for ; err != nil; err = unwrap(err) {
		if ee, ok := err.(*Error); ok {
			e = ee
			break
		}
	}
	if e == nil {
		return 0, false
	}
	return e.Kind, true
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func newErrf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err}
}
