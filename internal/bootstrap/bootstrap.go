// Package bootstrap loads the read-only site content the console needs before
// it renders anything. The host calls Init exactly once; nothing is cached at
// package level.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"labadmin/internal/logging"
	"labadmin/internal/site"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher reads one JSON document from the backend.
type Fetcher interface {
	Get(ctx context.Context, path string, out any) error
}

// Section names, also used in FetchError.
const (
	SectionAbout         = "about"
	SectionResearch      = "research"
	SectionPeople        = "people"
	SectionProjects      = "projects"
	SectionAchievements  = "achievements"
	SectionPublications  = "publications"
	SectionTeaching      = "teaching"
	SectionContacts      = "contacts"
	SectionOpenPositions = "open_positions"
)

// Endpoints of every bootstrap section.
var Endpoints = map[string]string{
	SectionAbout:         "/api/about/get-about-body",
	SectionResearch:      "/api/research-verticals/research-verticals",
	SectionPeople:        "/api/people/get-people",
	SectionProjects:      "/api/projects/get-all-projects",
	SectionAchievements:  "/api/achievements/get-achievements",
	SectionPublications:  "/api/publications/get-publications-body",
	SectionTeaching:      "/api/teaching/get-all-teaching",
	SectionContacts:      "/api/contacts/get-all-contacts",
	SectionOpenPositions: "/api/open-positions/get-all-open-positions",
}

// AppData is the site content available to every screen. Sections the console
// does not edit are kept as raw JSON.
type AppData struct {
	About             string
	ResearchVerticals []site.ResearchVertical
	People            []json.RawMessage
	Projects          []json.RawMessage
	Achievements      []site.Achievement
	Publications      json.RawMessage
	Teaching          []json.RawMessage
	Contacts          []site.Contact
	OpenPositions     []json.RawMessage

	LoadedAt time.Time
}

// Counts returns the number of entries per list section.
func (d *AppData) Counts() map[string]int {
	return map[string]int{
		SectionResearch:      len(d.ResearchVerticals),
		SectionPeople:        len(d.People),
		SectionProjects:      len(d.Projects),
		SectionAchievements:  len(d.Achievements),
		SectionTeaching:      len(d.Teaching),
		SectionContacts:      len(d.Contacts),
		SectionOpenPositions: len(d.OpenPositions),
	}
}

// FetchError lists every section that failed to load.
type FetchError struct {
	Failures map[string]error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("bootstrap failed for %s", strings.Join(e.Sections(), ", "))
}

// Sections returns the failed section names, sorted.
func (e *FetchError) Sections() []string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, name := range e.Sections() {
		errs = append(errs, e.Failures[name])
	}
	return errs
}

// Init fetches every section concurrently. When some sections fail it returns
// the partially filled AppData together with a *FetchError naming them.
func Init(ctx context.Context, f Fetcher) (*AppData, error) {
	logger := logging.Get(logging.CategoryBoot)
	start := time.Now()

	data := &AppData{}
	var (
		mu       sync.Mutex
		failures = map[string]error{}
	)
	addError := func(section string, err error) {
		mu.Lock()
		failures[section] = err
		mu.Unlock()
		logger.Warn("bootstrap section failed", zap.String("section", section), zap.Error(err))
	}

	var about site.About
	targets := map[string]any{
		SectionAbout:         &about,
		SectionResearch:      &data.ResearchVerticals,
		SectionPeople:        &data.People,
		SectionProjects:      &data.Projects,
		SectionAchievements:  &data.Achievements,
		SectionPublications:  &data.Publications,
		SectionTeaching:      &data.Teaching,
		SectionContacts:      &data.Contacts,
		SectionOpenPositions: &data.OpenPositions,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for section, out := range targets {
		eg.Go(func() error {
			if err := f.Get(egCtx, Endpoints[section], out); err != nil {
				addError(section, fmt.Errorf("%s: %w", section, err))
			}
			return nil
		})
	}
	_ = eg.Wait()

	data.About = about.Body
	data.LoadedAt = time.Now()
	logger.Info("bootstrap complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed_sections", len(failures)))

	if len(failures) > 0 {
		return data, &FetchError{Failures: failures}
	}
	return data, nil
}
