package notify

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"labadmin/internal/crud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptGate_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"y", true}, // no trailing newline
		{"", false}, // EOF declines
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			gate := NewPromptGate(strings.NewReader(tt.input), &out, PlainStyles())

			got, err := gate.ConfirmDestructive(context.Background(), "Delete contact 1?")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Are you sure? Delete contact 1? [y/N]: ")
		})
	}
}

func TestPromptGate_SequentialPrompts(t *testing.T) {
	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("n\ny\n"), &out, PlainStyles())

	first, err := gate.ConfirmDestructive(context.Background(), "first")
	require.NoError(t, err)
	second, err := gate.ConfirmDestructive(context.Background(), "second")
	require.NoError(t, err)

	assert.False(t, first)
	assert.True(t, second)
}

func TestPromptGate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	gate := NewPromptGate(strings.NewReader("y\n"), &out, PlainStyles())

	ok, err := gate.ConfirmDestructive(ctx, "x")

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestPromptGate_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	gate := NewPromptGate(pr, &out, PlainStyles())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ok, err := gate.ConfirmDestructive(ctx, "Delete contact 1?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the abandoned read answers the next prompt
	go func() { _, _ = pw.Write([]byte("y\n")) }()
	ok, err = gate.ConfirmDestructive(context.Background(), "Delete contact 2?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Delete contact 2? [y/N]: ")
}

func TestStaticGate(t *testing.T) {
	gate := &StaticGate{Answer: true}

	ok, err := gate.ConfirmDestructive(context.Background(), "Delete achievement 3?")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Delete achievement 3?"}, gate.Asked())
}

func TestPrinter_Notify(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, PlainStyles())

	p.Notify(crud.Notice{Level: crud.LevelSuccess, Title: "Success", Message: "Contact added successfully!"})
	p.Notify(crud.Notice{Level: crud.LevelError, Title: "Error", Message: "Failed to delete contact"})

	assert.Equal(t, "Success: Contact added successfully!\nError: Failed to delete contact\n", out.String())
}

func TestCollectorAndFanout(t *testing.T) {
	a, b := &Collector{}, &Collector{}
	f := Fanout{a, b}

	_, ok := a.Last()
	assert.False(t, ok)

	n := crud.Notice{Level: crud.LevelInfo, Title: "Info", Message: "hi"}
	f.Notify(n)

	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, n, last)
	assert.Equal(t, []crud.Notice{n}, b.Notices())
}
