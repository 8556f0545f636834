package site

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EmptyContacts is shown instead of the list when there are no contacts.
const EmptyContacts = "No contacts found."

// ContactView is how one contact is displayed. Href is empty for plain values.
type ContactView struct {
	Label string
	Text  string
	Href  string
}

// Line renders the view as "Label: Text".
func (v ContactView) Line() string { return v.Label + ": " + v.Text }

// RenderContact maps a contact to its display form. Mail becomes a mailto link,
// websites become links with https:// added when no scheme is present, and
// everything else is shown as a capitalized type with the raw value.
func RenderContact(c Contact) ContactView {
	switch strings.ToLower(c.Type) {
	case "mail":
		return ContactView{Label: "Email", Text: c.Value, Href: "mailto:" + c.Value}
	case "website":
		href := c.Value
		if !strings.HasPrefix(href, "http") {
			href = "https://" + href
		}
		return ContactView{Label: "Website", Text: c.Value, Href: href}
	}
	return ContactView{Label: capitalize(c.Type), Text: c.Value}
}

// RenderContacts renders the whole list. An empty collection yields no views;
// callers show EmptyContacts.
func RenderContacts(contacts []Contact) []ContactView {
	if len(contacts) == 0 {
		return nil
	}
	views := make([]ContactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, RenderContact(c))
	}
	return views
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
