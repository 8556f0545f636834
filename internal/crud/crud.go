// Package crud implements the create/update/delete synchronization shared by every
// admin screen: a list store refreshed wholesale from the backend, an edit session
// staging a draft and an optional attachment, a mutation gateway that validates,
// encodes and dispatches the draft, and a confirmation gate in front of deletes.
//
// A Controller ties these together for one entity type, configured by a Descriptor.
package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

// Identifier is the opaque, server-assigned id of an entity.
// The backend emits integers; strings are accepted as well.
type Identifier string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = Identifier(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers so they round-trip
// unchanged. Anything else, "007" or "+5" included, stays a string.
func (id Identifier) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id Identifier) String() string { return string(id) }

// Record is implemented by every entity the admin console manages.
type Record interface {
	RecordID() Identifier
	// FieldValues returns the editable text fields keyed by wire name.
	FieldValues() map[string]string
	// ImageRef is the stored image URL, empty when none exists.
	ImageRef() string
}

// Request is a fully encoded backend call.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Transport performs requests against the backend. A nil out discards the response
// body. Non-2xx statuses and network failures are both returned as errors.
type Transport interface {
	Do(ctx context.Context, req Request, out any) error
}

// Gate asks the user to confirm a destructive action. It may block until the
// user answers. A false answer is not an error.
type Gate interface {
	ConfirmDestructive(ctx context.Context, description string) (bool, error)
}

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notice is a short title/message notification shown to the user.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Outcome names the result of a mutation attempt for the activity journal.
type Outcome string

const (
	OutcomeSaved        Outcome = "saved"
	OutcomeSaveFailed   Outcome = "save_failed"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeDeleted      Outcome = "deleted"
	OutcomeDeleteFailed Outcome = "delete_failed"
)

// Action is the kind of mutation attempted.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event describes one mutation attempt.
type Event struct {
	Entity    string
	Action    Action
	TargetID  Identifier
	Outcome   Outcome
	RequestID string
	Detail    string
}

// Recorder persists mutation events. Recording failures never fail the mutation.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
