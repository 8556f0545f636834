package crud

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed CRUD operation for user-facing notices.
type Kind int

const (
	KindFetchFailed      Kind = iota // list load failed
	KindValidationFailed             // draft rejected locally, nothing was sent
	KindSaveFailed                   // create/update rejected by transport or server
	KindDeleteFailed                 // delete rejected by transport or server
)

func (k Kind) String() string {
	switch k {
	case KindFetchFailed:
		return "fetch_failed"
	case KindValidationFailed:
		return "validation_failed"
	case KindSaveFailed:
		return "save_failed"
	case KindDeleteFailed:
		return "delete_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrSessionClosed rejects a submit on a closed session. Draft mutations on a
	// closed session panic with it.
	ErrSessionClosed = errors.New("edit session is closed")

	// ErrSubmitInFlight rejects a submit while a previous one has not returned.
	ErrSubmitInFlight = errors.New("a submit is already in flight")

	// ErrCreateUnsupported is returned when the entity type has no create endpoint.
	ErrCreateUnsupported = errors.New("entity type does not support create")

	// ErrNotFound is returned when an id is not part of the loaded collection.
	ErrNotFound = errors.New("entity not found in collection")
)

// Error is the typed failure of a fetch, validation, save or delete.
type Error struct {
	Kind    Kind
	Entity  string   // human label, e.g. "contact"
	Missing []string // empty required fields, validation only
	Invalid []string // option violations, validation only
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidationFailed:
		return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(append(append([]string{}, e.Missing...), e.Invalid...), ", "))
	case KindFetchFailed:
		return fmt.Sprintf("failed to fetch %s: %v", plural(e.Entity), e.Err)
	case KindSaveFailed:
		return fmt.Sprintf("failed to save %s: %v", e.Entity, e.Err)
	case KindDeleteFailed:
		return fmt.Sprintf("failed to delete %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Title is the short heading shown in alert dialogs.
func (e *Error) Title() string { return "Error" }

// Message is the notice body. Server supplied detail wins over the default text.
func (e *Error) Message() string {
	if e.Kind == KindValidationFailed {
		return validationMessage(e.Missing, e.Invalid)
	}
	var d detailer
	if errors.As(e.Err, &d) {
		if detail := strings.TrimSpace(d.Detail()); detail != "" {
			return detail
		}
	}
	switch e.Kind {
	case KindFetchFailed:
		return "Failed to fetch " + plural(e.Entity)
	case KindSaveFailed:
		return "Failed to save " + e.Entity
	case KindDeleteFailed:
		return "Failed to delete " + e.Entity
	}
	return e.Error()
}

// detailer is implemented by transport errors carrying a server message.
type detailer interface {
	Detail() string
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

func validationMessage(missing, invalid []string) string {
	parts := make([]string, 0, 1+len(invalid))
	if len(missing) > 0 || len(invalid) == 0 {
		parts = append(parts, requiredMessage(missing))
	}
	for _, msg := range invalid {
		parts = append(parts, msg+"!")
	}
	return strings.Join(parts, " ")
}

func requiredMessage(missing []string) string {
	switch len(missing) {
	case 0:
		return "All fields are required!"
	case 1:
		return missing[0] + " is required!"
	}
	head := strings.Join(missing[:len(missing)-1], ", ")
	return head + " and " + missing[len(missing)-1] + " are required!"
}

func plural(s string) string {
	if s == "" || strings.HasSuffix(s, "s") {
		return s
	}
	if strings.HasSuffix(s, "person") {
		return strings.TrimSuffix(s, "person") + "people"
	}
	return s + "s"
}
