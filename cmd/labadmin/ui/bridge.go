package ui

import (
	"context"
	"errors"
	"sync"

	"labadmin/internal/crud"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoProgram is returned by the bridge gate before a program is attached.
var ErrNoProgram = errors.New("ui: no running program")

// noticeMsg carries a controller notice into the update loop.
type noticeMsg struct {
	notice crud.Notice
}

// confirmRequestMsg asks the update loop to show a confirmation dialog. The
// answer is written to reply exactly once.
type confirmRequestMsg struct {
	description string
	reply       chan<- bool
}

// Bridge lets controllers running inside tea.Cmd goroutines reach the UI:
// notices become alert dialogs and destructive confirmations block on a
// dialog answer.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewBridge returns a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.SetSender(p.Send)
}

// SetSender routes messages to send.
func (b *Bridge) SetSender(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) sender() func(tea.Msg) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.send
}

// Notify implements crud.Notifier.
func (b *Bridge) Notify(n crud.Notice) {
	if send := b.sender(); send != nil {
		send(noticeMsg{notice: n})
	}
}

// ConfirmDestructive implements crud.Gate. It blocks until the dialog is
// answered or ctx is done.
func (b *Bridge) ConfirmDestructive(ctx context.Context, description string) (bool, error) {
	send := b.sender()
	if send == nil {
		return false, ErrNoProgram
	}
	reply := make(chan bool, 1)
	send(confirmRequestMsg{description: description, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
