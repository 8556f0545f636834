// Package notify implements the confirmation gate and notifier used outside the
// full-screen UI: interactive terminal prompts, fixed answers for scripts and
// tests, and styled one-line notices.
package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// PromptGate asks on out and reads a y/N answer from in. Anything other than
// y or yes declines.
type PromptGate struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	styles Styles
	// pending is a read left running by a canceled prompt. The next prompt
	// takes its answer instead of starting a second reader.
	pending <-chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewPromptGate creates a gate reading from in and writing to out.
func NewPromptGate(in io.Reader, out io.Writer, styles Styles) *PromptGate {
	return &PromptGate{in: bufio.NewReader(in), out: out, styles: styles}
}

// ConfirmDestructive prints description and reads one line. End of input
// declines; canceling ctx abandons the prompt with ctx's error.
func (g *PromptGate) ConfirmDestructive(ctx context.Context, description string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	fmt.Fprintf(g.out, "%s %s [y/N]: ", g.styles.Warning.Render("Are you sure?"), description)

	var r readResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(g.out)
		return false, ctx.Err()
	case r = <-g.readLine():
		g.pending = nil
	}

	if r.err != nil && r.line == "" {
		if errors.Is(r.err, io.EOF) {
			fmt.Fprintln(g.out)
			return false, nil
		}
		return false, fmt.Errorf("failed to read answer: %w", r.err)
	}
	switch strings.ToLower(strings.TrimSpace(r.line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readLine returns the outstanding read, starting one if none is running.
// Callers hold g.mu.
func (g *PromptGate) readLine() <-chan readResult {
	if g.pending != nil {
		return g.pending
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := g.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()
	g.pending = ch
	return ch
}

// StaticGate always gives the same answer. Used for --yes and tests.
type StaticGate struct {
	Answer bool

	mu    sync.Mutex
	asked []string
}

// ConfirmDestructive records description and returns the fixed answer.
func (g *StaticGate) ConfirmDestructive(_ context.Context, description string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.asked = append(g.asked, description)
	return g.Answer, nil
}

// Asked returns every description seen so far.
func (g *StaticGate) Asked() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.asked))
	copy(out, g.asked)
	return out
}
