package site

import (
	"net/url"

	"labadmin/internal/crud"
)

const (
	achievementsAPI = "/api/achievements"
	contactsAPI     = "/api/contacts"
	researchAPI     = "/api/research-verticals"
)

// Achievements configures the achievements screen. Bodies are always sent as
// multipart and trimmed; an image is mandatory when creating.
func Achievements() crud.Descriptor {
	return crud.Descriptor{
		Name:  "achievement",
		Title: "Achievement",
		Fields: []crud.FieldSpec{
			{Name: "body", Label: "Body", Required: true, Trim: true, Multiline: true},
		},
		Image:     crud.ImagePolicy{Enabled: true, RequiredOnCreate: true},
		Multipart: true,
		Paths: crud.Paths{
			List:   achievementsAPI + "/get-achievements",
			Create: achievementsAPI + "/add-achievement",
			Update: achievementsAPI + "/edit-achievement",
			Delete: achievementsAPI + "/delete-achievement",
		},
	}
}

// Contacts configures the contacts screen.
func Contacts() crud.Descriptor {
	return crud.Descriptor{
		Name:  "contact",
		Title: "Contact",
		Fields: []crud.FieldSpec{
			{Name: "type", Label: "Type", Required: true},
			{Name: "value", Label: "Value", Required: true},
		},
		Paths: crud.Paths{
			List:   contactsAPI + "/get-all-contacts",
			Create: contactsAPI + "/add-contact",
			Update: contactsAPI + "/edit-contact",
			Delete: contactsAPI + "/delete-contact",
		},
	}
}

// ResearchVerticals configures vertical editing. Verticals cannot be created
// from the console.
func ResearchVerticals() crud.Descriptor {
	base := researchAPI + "/research-verticals"
	return crud.Descriptor{
		Name:  "research vertical",
		Title: "Research",
		Fields: []crud.FieldSpec{
			{Name: "name", Label: "Name", Required: true},
			{Name: "overview", Label: "Overview", Multiline: true},
			{Name: "key_objectives", Label: "Key Objectives", Multiline: true},
		},
		Paths: crud.Paths{
			List:   base,
			Update: base,
			Delete: base,
		},
	}
}

// ResearchPeople configures the people listed under verticalID.
func ResearchPeople(verticalID crud.Identifier) crud.Descriptor {
	base := researchAPI + "/research-people"
	scoped := base + "/" + url.PathEscape(string(verticalID))
	return crud.Descriptor{
		Name:  "research person",
		Title: "Person",
		Fields: []crud.FieldSpec{
			{Name: "name", Label: "Name", Required: true},
			{Name: "category", Label: "Category", Required: true, Options: []string{CategoryFaculty, CategoryResearcher}},
			{Name: "description", Label: "Description", Multiline: true},
		},
		Image:     crud.ImagePolicy{Enabled: true, RequiredOnCreate: true},
		Multipart: true,
		Paths: crud.Paths{
			List:   scoped,
			Create: scoped,
			Update: base,
			Delete: base,
		},
	}
}
