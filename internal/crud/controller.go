package crud

import (
	"context"
	"errors"
	"fmt"

	"labadmin/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller is one screen's worth of CRUD state for a single entity type:
// the list store, the edit session, the gateway and the confirmation gate.
type Controller[T Record] struct {
	desc     Descriptor
	store    *Store[T]
	session  *Session
	gateway  *Gateway
	gate     Gate
	notifier Notifier
	recorder Recorder
	logger   *zap.Logger
}

// Option customizes a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	recorder Recorder
	logger   *zap.Logger
}

// WithRecorder journals every mutation attempt to r.
func WithRecorder(r Recorder) Option {
	return func(o *controllerOptions) { o.recorder = r }
}

// WithLogger overrides the session category logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *controllerOptions) { o.logger = l }
}

// NewController wires a controller for desc.
func NewController[T Record](desc Descriptor, transport Transport, gate Gate, notifier Notifier, opts ...Option) *Controller[T] {
	o := controllerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Get(logging.CategorySession)
	}
	return &Controller[T]{
		desc:     desc,
		store:    NewStore[T](desc, transport),
		session:  NewSession(desc),
		gateway:  NewGateway(desc, transport),
		gate:     gate,
		notifier: notifier,
		recorder: o.recorder,
		logger:   o.logger.With(zap.String("entity", desc.Name)),
	}
}

// Descriptor returns the entity configuration.
func (c *Controller[T]) Descriptor() Descriptor { return c.desc }

// Store exposes the collection for rendering.
func (c *Controller[T]) Store() *Store[T] { return c.store }

// Session exposes the edit session for rendering.
func (c *Controller[T]) Session() *Session { return c.session }

// Mount performs the initial load. Failures are always surfaced to the user.
func (c *Controller[T]) Mount(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload re-fetches the whole collection.
func (c *Controller[T]) Reload(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		c.notifyErr(err)
		return err
	}
	return nil
}

// OpenForCreate opens an empty draft.
func (c *Controller[T]) OpenForCreate() error {
	if !c.desc.CanCreate() {
		return ErrCreateUnsupported
	}
	c.session.OpenForCreate()
	return nil
}

// OpenForEdit opens a draft initialized from the loaded entity id.
func (c *Controller[T]) OpenForEdit(id Identifier) error {
	item, ok := c.store.Find(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", c.desc.Name, id, ErrNotFound)
	}
	c.session.OpenForEdit(item)
	return nil
}

// UpdateField stages a field value on the open draft.
func (c *Controller[T]) UpdateField(name, value string) { c.session.UpdateField(name, value) }

// StageAttachment stages a binary payload on the open draft.
func (c *Controller[T]) StageAttachment(a *Attachment) { c.session.StageAttachment(a) }

// Cancel closes the edit session without saving.
func (c *Controller[T]) Cancel() { c.session.Close() }

// Submit validates and sends the open draft. On success the session closes and
// the collection is reloaded; on failure the session stays open for a retry.
// A submit while another is in flight returns ErrSubmitInFlight, and a submit
// on a closed session returns ErrSessionClosed.
func (c *Controller[T]) Submit(ctx context.Context) error {
	snap, err := c.session.begin()
	if err != nil {
		return err
	}
	defer c.session.end(snap)

	action := ActionUpdate
	if snap.Mode == ModeCreating {
		action = ActionCreate
	}
	rid := uuid.NewString()
	ctx = WithRequestID(ctx, rid)
	log := c.logger.With(zap.String("action", string(action)), zap.String("request_id", rid))

	if err := c.gateway.Submit(ctx, snap); err != nil {
		outcome := OutcomeSaveFailed
		if IsKind(err, KindValidationFailed) {
			outcome = OutcomeInvalid
		}
		log.Warn("submit failed", zap.Error(err))
		c.notifyErr(err)
		c.record(ctx, Event{Action: action, TargetID: snap.ID, Outcome: outcome, RequestID: rid, Detail: err.Error()})
		return err
	}

	log.Info("submit succeeded", zap.String("id", string(snap.ID)))
	verb := "updated"
	if action == ActionCreate {
		verb = "added"
	}
	c.notify(Notice{Level: LevelSuccess, Title: "Success", Message: fmt.Sprintf("%s %s successfully!", c.desc.Title, verb)})
	c.record(ctx, Event{Action: action, TargetID: snap.ID, Outcome: OutcomeSaved, RequestID: rid})

	c.session.closeIf(snap)
	// The save already happened; a failed reload only leaves stale rows visible.
	_ = c.Reload(ctx)
	return nil
}

// Delete asks the gate for confirmation and then deletes id. A declined
// confirmation returns (false, nil) and sends nothing.
func (c *Controller[T]) Delete(ctx context.Context, id Identifier) (bool, error) {
	description := fmt.Sprintf("Delete %s %s? This action cannot be undone!", c.desc.Name, id)
	ok, err := c.gate.ConfirmDestructive(ctx, description)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		c.logger.Debug("delete declined", zap.String("id", string(id)))
		return false, nil
	}

	rid := uuid.NewString()
	ctx = WithRequestID(ctx, rid)
	log := c.logger.With(zap.String("action", string(ActionDelete)), zap.String("id", string(id)), zap.String("request_id", rid))

	if err := c.gateway.Delete(ctx, id); err != nil {
		log.Warn("delete failed", zap.Error(err))
		c.notifyErr(err)
		c.record(ctx, Event{Action: ActionDelete, TargetID: id, Outcome: OutcomeDeleteFailed, RequestID: rid, Detail: err.Error()})
		return false, err
	}

	log.Info("delete succeeded")
	c.store.RemoveLocal(id)
	c.notify(Notice{Level: LevelSuccess, Title: "Deleted!", Message: fmt.Sprintf("%s has been deleted.", c.desc.Title)})
	c.record(ctx, Event{Action: ActionDelete, TargetID: id, Outcome: OutcomeDeleted, RequestID: rid})
	_ = c.Reload(ctx)
	return true, nil
}

func (c *Controller[T]) notify(n Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

func (c *Controller[T]) notifyErr(err error) {
	var ce *Error
	if errors.As(err, &ce) {
		c.notify(Notice{Level: LevelError, Title: ce.Title(), Message: ce.Message()})
		return
	}
	c.notify(Notice{Level: LevelError, Title: "Error", Message: err.Error()})
}

func (c *Controller[T]) record(ctx context.Context, ev Event) {
	if c.recorder == nil {
		return
	}
	ev.Entity = c.desc.Name
	if err := c.recorder.Record(context.WithoutCancel(ctx), ev); err != nil {
		c.logger.Warn("journal write failed", zap.Error(err))
	}
}
