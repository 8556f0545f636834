// Package site defines the lab website's managed entities and the descriptors
// that configure the generic CRUD machinery for each of them.
package site

import (
	"labadmin/internal/crud"
)

// Achievement is a news item with a picture.
type Achievement struct {
	ID    crud.Identifier `json:"id"`
	Body  string          `json:"body"`
	Image string          `json:"image,omitempty"`
}

func (a Achievement) RecordID() crud.Identifier { return a.ID }

func (a Achievement) FieldValues() map[string]string {
	return map[string]string{"body": a.Body}
}

func (a Achievement) ImageRef() string { return a.Image }

// Contact is a typed contact channel such as mail, phone or website.
type Contact struct {
	ID    crud.Identifier `json:"id"`
	Type  string          `json:"type"`
	Value string          `json:"value"`
}

func (c Contact) RecordID() crud.Identifier { return c.ID }

func (c Contact) FieldValues() map[string]string {
	return map[string]string{"type": c.Type, "value": c.Value}
}

func (c Contact) ImageRef() string { return "" }

// ResearchVertical is a research area. Overview and key objectives are markdown.
type ResearchVertical struct {
	ID            crud.Identifier `json:"id"`
	Name          string          `json:"name"`
	Overview      string          `json:"overview"`
	KeyObjectives string          `json:"key_objectives"`
}

func (v ResearchVertical) RecordID() crud.Identifier { return v.ID }

func (v ResearchVertical) FieldValues() map[string]string {
	return map[string]string{
		"name":           v.Name,
		"overview":       v.Overview,
		"key_objectives": v.KeyObjectives,
	}
}

func (v ResearchVertical) ImageRef() string { return "" }

// ResearchPerson is a member listed under one research vertical.
type ResearchPerson struct {
	ID          crud.Identifier `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
}

func (p ResearchPerson) RecordID() crud.Identifier { return p.ID }

func (p ResearchPerson) FieldValues() map[string]string {
	return map[string]string{
		"name":        p.Name,
		"category":    p.Category,
		"description": p.Description,
	}
}

func (p ResearchPerson) ImageRef() string { return p.Image }

// Person categories accepted by the backend.
const (
	CategoryFaculty    = "faculty"
	CategoryResearcher = "researcher"
)

// About is the body of the about page.
type About struct {
	Body string `json:"body"`
}
