package crud

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type contactFixture struct {
	backend   *contactBackend
	transport *recordingTransport
	gate      *staticGate
	notices   *noticeRecorder
	events    *eventRecorder
	ctrl      *Controller[testContact]
}

func newContactFixture(t *testing.T, confirm bool, items ...testContact) *contactFixture {
	t.Helper()
	f := &contactFixture{
		backend: newContactBackend(items...),
		gate:    &staticGate{answer: confirm},
		notices: &noticeRecorder{},
		events:  &eventRecorder{},
	}
	f.transport = &recordingTransport{handler: f.backend.handle}
	f.ctrl = NewController[testContact](contactDesc, f.transport, f.gate, f.notices,
		WithRecorder(f.events), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, f.ctrl.Mount(context.Background()))
	return f
}

func TestController_CreateThenReloadShowsDraft(t *testing.T) {
	f := newContactFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.ctrl.OpenForCreate())
	f.ctrl.UpdateField("type", "mail")
	f.ctrl.UpdateField("value", "pi@lab.org")
	require.NoError(t, f.ctrl.Submit(ctx))

	assert.Equal(t, ModeClosed, f.ctrl.Session().Mode())
	items := f.ctrl.Store().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "mail", items[0].Type)
	assert.Equal(t, "pi@lab.org", items[0].Value)

	assert.Equal(t, Notice{Level: LevelSuccess, Title: "Success", Message: "Contact added successfully!"}, f.notices.last())
	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, ActionCreate, ev.Action)
	assert.Equal(t, OutcomeSaved, ev.Outcome)
	assert.Equal(t, "contact", ev.Entity)
	assert.NotEmpty(t, ev.RequestID)
}

func TestController_UpdateThenReloadShowsDraft(t *testing.T) {
	f := newContactFixture(t, true, testContact{ID: "1", Type: "mail", Value: "old@lab.org"})
	ctx := context.Background()

	require.NoError(t, f.ctrl.OpenForEdit("1"))
	f.ctrl.UpdateField("value", "new@lab.org")
	require.NoError(t, f.ctrl.Submit(ctx))

	got, ok := f.ctrl.Store().Find("1")
	require.True(t, ok)
	assert.Equal(t, "new@lab.org", got.Value)
	assert.Equal(t, "Contact updated successfully!", f.notices.last().Message)
	assert.Equal(t, 2, f.transport.count(http.MethodGet), "mount and post-save reload")
}

func TestController_OpenForEditUnknownID(t *testing.T) {
	f := newContactFixture(t, true)

	err := f.ctrl.OpenForEdit("404")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, f.ctrl.Session().IsOpen())
}

func TestController_InvalidSubmitKeepsSessionOpen(t *testing.T) {
	f := newContactFixture(t, true)

	require.NoError(t, f.ctrl.OpenForCreate())
	f.ctrl.UpdateField("type", "mail")
	err := f.ctrl.Submit(context.Background())

	assert.True(t, IsKind(err, KindValidationFailed))
	assert.Equal(t, ModeCreating, f.ctrl.Session().Mode())
	assert.Equal(t, "mail", f.ctrl.Session().Draft().Get("type"))
	assert.Equal(t, 0, f.transport.count(http.MethodPost))
	assert.Equal(t, Notice{Level: LevelError, Title: "Error", Message: "Value is required!"}, f.notices.last())
	require.Len(t, f.events.events, 1)
	assert.Equal(t, OutcomeInvalid, f.events.events[0].Outcome)
}

func TestController_SaveFailureKeepsSessionOpen(t *testing.T) {
	f := newContactFixture(t, true, testContact{ID: "1", Type: "mail", Value: "a@lab.org"})
	f.backend.fail[http.MethodPut] = statusErr{code: 400, detail: "Invalid contact"}

	require.NoError(t, f.ctrl.OpenForEdit("1"))
	f.ctrl.UpdateField("value", "b@lab.org")
	err := f.ctrl.Submit(context.Background())

	assert.True(t, IsKind(err, KindSaveFailed))
	assert.Equal(t, ModeEditing, f.ctrl.Session().Mode())
	assert.False(t, f.ctrl.Session().Busy(), "retry must be possible")
	assert.Equal(t, "Invalid contact", f.notices.last().Message)
	got, _ := f.ctrl.Store().Find("1")
	assert.Equal(t, "a@lab.org", got.Value)
}

func TestController_SubmitRejectsReentry(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	tr := &recordingTransport{}
	tr.handler = func(req Request, out any) error {
		if req.Method == http.MethodPost {
			close(started)
			<-release
		}
		return respond(out, []testContact{})
	}
	ctrl := NewController[testContact](contactDesc, tr, &staticGate{}, &noticeRecorder{}, WithLogger(zaptest.NewLogger(t)))

	require.NoError(t, ctrl.OpenForCreate())
	ctrl.UpdateField("type", "mail")
	ctrl.UpdateField("value", "a@lab.org")

	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(context.Background()) }()
	<-started

	err := ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, tr.count(http.MethodPost))
	assert.False(t, ctrl.Session().IsOpen())
}

func TestController_SubmitOnClosedSession(t *testing.T) {
	f := newContactFixture(t, true)

	err := f.ctrl.Submit(context.Background())

	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestController_DeleteThenReloadLacksID(t *testing.T) {
	f := newContactFixture(t, true,
		testContact{ID: "1", Type: "mail", Value: "a@lab.org"},
		testContact{ID: "2", Type: "phone", Value: "555"},
	)

	deleted, err := f.ctrl.Delete(context.Background(), "1")

	require.NoError(t, err)
	assert.True(t, deleted)
	_, ok := f.ctrl.Store().Find("1")
	assert.False(t, ok)
	assert.Equal(t, 1, f.ctrl.Store().Len())
	assert.Equal(t, []string{"Delete contact 1? This action cannot be undone!"}, f.gate.asked)
	assert.Equal(t, Notice{Level: LevelSuccess, Title: "Deleted!", Message: "Contact has been deleted."}, f.notices.last())
	require.Len(t, f.events.events, 1)
	assert.Equal(t, OutcomeDeleted, f.events.events[0].Outcome)
	assert.Equal(t, Identifier("1"), f.events.events[0].TargetID)
}

func TestController_DeclinedDeleteHasNoEffect(t *testing.T) {
	f := newContactFixture(t, false, testContact{ID: "1", Type: "mail", Value: "a@lab.org"})
	noticesBefore := len(f.notices.notices)

	deleted, err := f.ctrl.Delete(context.Background(), "1")

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 0, f.transport.count(http.MethodDelete))
	assert.Equal(t, 1, f.ctrl.Store().Len())
	assert.Len(t, f.notices.notices, noticesBefore)
	assert.Empty(t, f.events.events)
}

func TestController_DeleteFailureKeepsCollection(t *testing.T) {
	f := newContactFixture(t, true, testContact{ID: "1", Type: "mail", Value: "a@lab.org"})
	f.backend.fail[http.MethodDelete] = errors.New("timeout")

	deleted, err := f.ctrl.Delete(context.Background(), "1")

	assert.False(t, deleted)
	assert.True(t, IsKind(err, KindDeleteFailed))
	assert.Equal(t, 1, f.ctrl.Store().Len())
	assert.Equal(t, "Failed to delete contact", f.notices.last().Message)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, OutcomeDeleteFailed, f.events.events[0].Outcome)
}

type erroringGate struct{}

func (erroringGate) ConfirmDestructive(context.Context, string) (bool, error) {
	return false, errors.New("prompt closed")
}

func TestController_GateErrorSendsNothing(t *testing.T) {
	tr := &recordingTransport{}
	ctrl := NewController[testContact](contactDesc, tr, erroringGate{}, &noticeRecorder{}, WithLogger(zaptest.NewLogger(t)))

	deleted, err := ctrl.Delete(context.Background(), "1")

	assert.False(t, deleted)
	assert.Error(t, err)
	assert.Empty(t, tr.Requests())
}

func TestController_MountFailureNotifies(t *testing.T) {
	tr := &recordingTransport{handler: func(Request, any) error { return errors.New("down") }}
	notices := &noticeRecorder{}
	ctrl := NewController[testContact](contactDesc, tr, &staticGate{}, notices, WithLogger(zaptest.NewLogger(t)))

	err := ctrl.Mount(context.Background())

	assert.True(t, IsKind(err, KindFetchFailed))
	assert.False(t, ctrl.Store().Loaded())
	assert.Equal(t, Notice{Level: LevelError, Title: "Error", Message: "Failed to fetch contacts"}, notices.last())
}

func TestController_CreateUnsupported(t *testing.T) {
	desc := contactDesc
	desc.Paths.Create = ""
	ctrl := NewController[testContact](desc, &recordingTransport{}, &staticGate{}, &noticeRecorder{}, WithLogger(zaptest.NewLogger(t)))

	assert.ErrorIs(t, ctrl.OpenForCreate(), ErrCreateUnsupported)
	assert.False(t, ctrl.Session().IsOpen())
}
