package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// =============================================================================
// TEST ENTITIES
// =============================================================================

type testContact struct {
	ID    Identifier `json:"id"`
	Type  string     `json:"type"`
	Value string     `json:"value"`
}

func (c testContact) RecordID() Identifier { return c.ID }
func (c testContact) FieldValues() map[string]string {
	return map[string]string{"type": c.Type, "value": c.Value}
}
func (c testContact) ImageRef() string { return "" }

type testAchievement struct {
	ID    Identifier `json:"id"`
	Body  string     `json:"body"`
	Image string     `json:"image"`
}

func (a testAchievement) RecordID() Identifier            { return a.ID }
func (a testAchievement) FieldValues() map[string]string { return map[string]string{"body": a.Body} }
func (a testAchievement) ImageRef() string               { return a.Image }

var contactDesc = Descriptor{
	Name:  "contact",
	Title: "Contact",
	Fields: []FieldSpec{
		{Name: "type", Label: "Type", Required: true},
		{Name: "value", Label: "Value", Required: true},
	},
	Paths: Paths{
		List:   "/api/contacts/get-all-contacts",
		Create: "/api/contacts/add-contact",
		Update: "/api/contacts/edit-contact",
		Delete: "/api/contacts/delete-contact",
	},
}

var achievementDesc = Descriptor{
	Name:  "achievement",
	Title: "Achievement",
	Fields: []FieldSpec{
		{Name: "body", Label: "Body", Required: true, Trim: true, Multiline: true},
	},
	Image:     ImagePolicy{Enabled: true, RequiredOnCreate: true},
	Multipart: true,
	Paths: Paths{
		List:   "/api/achievements/get-achievements",
		Create: "/api/achievements/add-achievement",
		Update: "/api/achievements/edit-achievement",
		Delete: "/api/achievements/delete-achievement",
	},
}

// =============================================================================
// FAKES
// =============================================================================

type recordingTransport struct {
	mu       sync.Mutex
	requests []Request
	ctxIDs   []string
	handler  func(req Request, out any) error
}

func (f *recordingTransport) Do(ctx context.Context, req Request, out any) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.ctxIDs = append(f.ctxIDs, RequestID(ctx))
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		return h(req, out)
	}
	return nil
}

func (f *recordingTransport) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *recordingTransport) count(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func respond(out any, v any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type statusErr struct {
	code   int
	detail string
}

func (e statusErr) Error() string  { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) Detail() string { return e.detail }

// contactBackend is a stable in-memory contacts API.
type contactBackend struct {
	mu     sync.Mutex
	items  []testContact
	nextID int
	fail   map[string]error // method -> error
}

func newContactBackend(items ...testContact) *contactBackend {
	return &contactBackend{items: items, nextID: 100, fail: map[string]error{}}
}

func (b *contactBackend) handle(req Request, out any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail[req.Method]; err != nil {
		return err
	}
	switch req.Method {
	case http.MethodGet:
		return respond(out, b.items)
	case http.MethodPost:
		var body map[string]string
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return err
		}
		b.nextID++
		b.items = append(b.items, testContact{ID: Identifier(strconv.Itoa(b.nextID)), Type: body["type"], Value: body["value"]})
		return nil
	case http.MethodPut:
		id := Identifier(req.Path[strings.LastIndex(req.Path, "/")+1:])
		var body map[string]string
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return err
		}
		for i := range b.items {
			if b.items[i].ID == id {
				b.items[i].Type, b.items[i].Value = body["type"], body["value"]
				return nil
			}
		}
		return statusErr{code: 404, detail: "contact not found"}
	case http.MethodDelete:
		id := Identifier(req.Path[strings.LastIndex(req.Path, "/")+1:])
		kept := b.items[:0]
		for _, it := range b.items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		b.items = kept
		return nil
	}
	return errors.New("unexpected method " + req.Method)
}

type staticGate struct {
	answer bool
	asked  []string
}

func (g *staticGate) ConfirmDestructive(_ context.Context, description string) (bool, error) {
	g.asked = append(g.asked, description)
	return g.answer, nil
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}
