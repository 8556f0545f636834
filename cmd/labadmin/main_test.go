package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"labadmin/internal/bootstrap"
	"labadmin/internal/config"
	"labadmin/internal/crud"
	"labadmin/internal/site"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteBackend is an in-memory lab website API.
type siteBackend struct {
	mu           sync.Mutex
	contacts     []site.Contact
	verticals    []site.ResearchVertical
	people       map[string][]site.ResearchPerson
	nextID       int
	failContacts bool
}

func newSiteBackend() *siteBackend {
	return &siteBackend{
		verticals: []site.ResearchVertical{{ID: "7", Name: "Robotics", Overview: "Arms and legs", KeyObjectives: "- grip"}},
		people:    map[string][]site.ResearchPerson{"7": {{ID: "1", Name: "Ada", Category: site.CategoryFaculty}}},
		nextID:    100,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *siteBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := r.URL.Path
	switch {
	case path == "/api/contacts/get-all-contacts":
		if b.failContacts {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]string{"message": "db down"})
			return
		}
		writeJSON(w, b.contacts)
	case r.Method == http.MethodPost && path == "/api/contacts/add-contact":
		var c site.Contact
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.nextID++
		c.ID = crud.Identifier(strconv.Itoa(b.nextID))
		b.contacts = append(b.contacts, c)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPut && strings.HasPrefix(path, "/api/contacts/edit-contact/"):
		id := crud.Identifier(strings.TrimPrefix(path, "/api/contacts/edit-contact/"))
		var c site.Contact
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for i := range b.contacts {
			if b.contacts[i].ID == id {
				b.contacts[i].Type, b.contacts[i].Value = c.Type, c.Value
				return
			}
		}
		http.NotFound(w, r)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/api/contacts/delete-contact/"):
		id := crud.Identifier(strings.TrimPrefix(path, "/api/contacts/delete-contact/"))
		kept := b.contacts[:0]
		for _, c := range b.contacts {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		b.contacts = kept
		w.WriteHeader(http.StatusNoContent)
	case path == "/api/research-verticals/research-verticals":
		writeJSON(w, b.verticals)
	case strings.HasPrefix(path, "/api/research-verticals/research-people/"):
		writeJSON(w, b.people[strings.TrimPrefix(path, "/api/research-verticals/research-people/")])
	case path == bootstrap.Endpoints[bootstrap.SectionAbout]:
		writeJSON(w, site.About{Body: "We build robots."})
	case path == bootstrap.Endpoints[bootstrap.SectionPublications]:
		writeJSON(w, map[string]string{"body": ""})
	case path == bootstrap.Endpoints[bootstrap.SectionAchievements]:
		writeJSON(w, []site.Achievement{{ID: "1", Body: "Best paper"}})
	default:
		writeJSON(w, []any{})
	}
}

func (b *siteBackend) contactCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.contacts)
}

// testConfig writes a config pointing at backendURL with a private journal.
func testConfig(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.Backend.BaseURL = backendURL
	c.Journal.DatabasePath = filepath.Join(dir, "journal.db")
	c.Logging.File = ""
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, c.Save(path))
	return path
}

func run(t *testing.T, configFile, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestContactsLifecycle(t *testing.T) {
	backend := newSiteBackend()
	srv := httptest.NewServer(backend)
	defer srv.Close()
	cfgFile := testConfig(t, srv.URL)

	out, err := run(t, cfgFile, "", "contacts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, site.EmptyContacts)

	out, err = run(t, cfgFile, "", "contacts", "add", "--field", "type=mail", "--field", "value=lab@uni.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact added successfully!")

	out, err = run(t, cfgFile, "", "contacts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: lab@uni.edu")
	assert.Contains(t, out, "mailto:lab@uni.edu")

	out, err = run(t, cfgFile, "", "contacts", "edit", "101", "-f", "value=office@uni.edu")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact updated successfully!")

	out, err = run(t, cfgFile, "", "contacts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: office@uni.edu")

	out, err = run(t, cfgFile, "", "--yes", "contacts", "delete", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact has been deleted.")
	assert.Equal(t, 0, backend.contactCount())

	out, err = run(t, cfgFile, "", "history", "--entity", "contact")
	require.NoError(t, err)
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "update")
	assert.Contains(t, out, "deleted")
}

func TestContactsDeleteDeclined(t *testing.T) {
	backend := newSiteBackend()
	backend.contacts = []site.Contact{{ID: "1", Type: "phone", Value: "555"}}
	srv := httptest.NewServer(backend)
	defer srv.Close()
	cfgFile := testConfig(t, srv.URL)

	out, err := run(t, cfgFile, "n\n", "contacts", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure?")
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 1, backend.contactCount())

	out, err = run(t, cfgFile, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes recorded.")
}

func TestContactsAddValidation(t *testing.T) {
	backend := newSiteBackend()
	srv := httptest.NewServer(backend)
	defer srv.Close()
	cfgFile := testConfig(t, srv.URL)

	out, err := run(t, cfgFile, "", "contacts", "add", "--field", "type=mail")
	require.Error(t, err)
	var re reportedError
	assert.True(t, errors.As(err, &re), "validation failures are already shown")
	assert.Contains(t, out, "Value is required!")
	assert.Equal(t, 0, backend.contactCount())

	_, err = run(t, cfgFile, "", "contacts", "add", "--field", "colour=red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "colour"`)
}

func TestContactsListFailure(t *testing.T) {
	backend := newSiteBackend()
	backend.failContacts = true
	srv := httptest.NewServer(backend)
	defer srv.Close()

	out, err := run(t, testConfig(t, srv.URL), "", "contacts", "list")
	require.Error(t, err)
	assert.Contains(t, out, "db down")
}

func TestResearchCommands(t *testing.T) {
	srv := httptest.NewServer(newSiteBackend())
	defer srv.Close()
	cfgFile := testConfig(t, srv.URL)

	out, err := run(t, cfgFile, "", "research", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Robotics")

	out, err = run(t, cfgFile, "", "research", "people", "list", "--vertical", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "faculty")

	_, err = run(t, cfgFile, "", "research", "people", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"vertical"`)

	cmd, _, err := newRootCmd().Find([]string{"research", "add"})
	require.NoError(t, err)
	assert.Equal(t, "research", cmd.Name(), "verticals have no add command")

	cmd, _, err = newRootCmd().Find([]string{"research", "people", "add"})
	require.NoError(t, err)
	assert.Equal(t, "add", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("image"))
}

func TestBootstrapReportsFailedSections(t *testing.T) {
	backend := newSiteBackend()
	backend.failContacts = true
	srv := httptest.NewServer(backend)
	defer srv.Close()

	out, err := run(t, testConfig(t, srv.URL), "", "status")
	require.Error(t, err)
	var fe *bootstrap.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{bootstrap.SectionContacts}, fe.Sections())
	assert.Contains(t, out, "failed: 500 db down")
	assert.Contains(t, out, "achievements")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, path, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = run(t, path, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, path, "", "config", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, path, "", "--backend", "https://lab.example.org", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://lab.example.org")
}

func TestInvalidBackendRejected(t *testing.T) {
	_, err := run(t, testConfig(t, "http://localhost:1"), "", "--backend", "not a url", "contacts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend base_url")
}

func TestParseFieldFlags(t *testing.T) {
	md := filepath.Join(t.TempDir(), "objectives.md")
	require.NoError(t, os.WriteFile(md, []byte("- walk\n- run\n"), 0644))

	values, att, err := parseFieldFlags(site.ResearchVerticals(), []string{"name=Robotics", "key_objectives=@" + md}, "")
	require.NoError(t, err)
	assert.Nil(t, att)
	assert.Equal(t, map[string]string{"name": "Robotics", "key_objectives": "- walk\n- run\n"}, values)

	_, _, err = parseFieldFlags(site.Contacts(), []string{"type"}, "")
	assert.ErrorContains(t, err, "expected name=value")

	_, _, err = parseFieldFlags(site.Achievements(), nil, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
