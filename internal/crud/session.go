package crud

import (
	"fmt"
	"sync"
)

// Mode is the state of an edit session.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreating
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeClosed:
		return "closed"
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Snapshot is an immutable copy of an open session, handed to the gateway.
type Snapshot struct {
	Mode          Mode
	ID            Identifier // set when editing
	Draft         Draft
	Attachment    *Attachment
	ExistingImage string
	gen           uint64
}

// Session is the transient edit state of one screen: closed, creating a new
// entity, or editing an existing one. It exclusively owns the draft and the
// staged attachment. Safe for use from the UI goroutine and command goroutines.
type Session struct {
	desc Descriptor

	mu            sync.Mutex
	mode          Mode
	id            Identifier
	draft         Draft
	attachment    *Attachment
	existingImage string
	busy          bool
	gen           uint64 // bumped on every open/close
}

// NewSession returns a closed session for desc.
func NewSession(desc Descriptor) *Session {
	return &Session{desc: desc}
}

// OpenForCreate opens the session with an empty draft. An already open session
// is discarded first.
func (s *Session) OpenForCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.mode = ModeCreating
	s.draft = newDraft(s.desc, nil)
}

// OpenForEdit opens the session with a draft initialized from r. The stored
// image is referenced, not re-uploaded.
func (s *Session) OpenForEdit(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.mode = ModeEditing
	s.id = r.RecordID()
	s.draft = newDraft(s.desc, r.FieldValues())
	s.existingImage = r.ImageRef()
}

// UpdateField stages value for name. No validation happens here.
func (s *Session) UpdateField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen()
	if !s.draft.set(name, value) {
		panic(fmt.Sprintf("crud: %s has no field %q", s.desc.Name, name))
	}
}

// StageAttachment replaces the staged attachment. nil unstages it.
func (s *Session) StageAttachment(a *Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen()
	s.attachment = a
}

// Close discards the draft and attachment. Safe to call in any state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// closeIf closes the session only if it was not reopened since snap was taken.
func (s *Session) closeIf(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != snap.gen {
		return false
	}
	s.reset()
	return true
}

func (s *Session) reset() {
	s.mode = ModeClosed
	s.id = ""
	s.draft = Draft{}
	s.attachment = nil
	s.existingImage = ""
	s.busy = false
	s.gen++
}

func (s *Session) mustBeOpen() {
	if s.mode == ModeClosed {
		panic(ErrSessionClosed)
	}
}

// Mode returns the current state.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// IsOpen reports whether a draft exists.
func (s *Session) IsOpen() bool { return s.Mode() != ModeClosed }

// TargetID is the id being edited, empty otherwise.
func (s *Session) TargetID() Identifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Draft returns a copy of the staged fields; empty when closed.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// Attachment returns the staged attachment, if any.
func (s *Session) Attachment() *Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

// ExistingImage is the stored image of the entity being edited.
func (s *Session) ExistingImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existingImage
}

// Busy reports whether a submit is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Snapshot copies the open session. Panics when closed.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:          s.mode,
		ID:            s.id,
		Draft:         s.draft.clone(),
		Attachment:    s.attachment,
		ExistingImage: s.existingImage,
		gen:           s.gen,
	}
}

// begin marks a submit in flight and returns the snapshot to send.
func (s *Session) begin() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeClosed {
		return Snapshot{}, ErrSessionClosed
	}
	if s.busy {
		return Snapshot{}, ErrSubmitInFlight
	}
	s.busy = true
	return s.snapshotLocked(), nil
}

// end clears the busy flag if the session is still the one that began.
func (s *Session) end(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == snap.gen {
		s.busy = false
	}
}
