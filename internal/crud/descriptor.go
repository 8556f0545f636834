package crud

import (
	"net/url"
	"strings"
)

// ImageField is the fixed multipart field name for attachments.
const ImageField = "image"

// FieldSpec describes one editable text field of an entity type.
type FieldSpec struct {
	Name      string   // wire name, e.g. "key_objectives"
	Label     string   // human label, e.g. "Key Objectives"
	Required  bool     // must be non-empty after trimming
	Trim      bool     // trimmed in the submitted payload
	Multiline bool     // edited with a textarea
	Options   []string // when set, the value must match one of these and is sent as written here
}

// ImagePolicy describes the attachment rules of an entity type.
type ImagePolicy struct {
	Enabled          bool
	RequiredOnCreate bool
}

// Paths builds the backend paths of an entity type. Create is empty when the
// type cannot be created from the console.
type Paths struct {
	List   string
	Create string
	Update string // prefix, the id is appended as a path segment
	Delete string // prefix, the id is appended as a path segment
}

// UpdatePath returns the per-id update path.
func (p Paths) UpdatePath(id Identifier) string { return joinID(p.Update, id) }

// DeletePath returns the per-id delete path.
func (p Paths) DeletePath(id Identifier) string { return joinID(p.Delete, id) }

func joinID(prefix string, id Identifier) string {
	return strings.TrimRight(prefix, "/") + "/" + url.PathEscape(string(id))
}

// Descriptor configures the generic CRUD machinery for one entity type.
type Descriptor struct {
	Name      string // singular label, e.g. "contact"
	Title     string // capitalized label, e.g. "Contact"
	Fields    []FieldSpec
	Image     ImagePolicy
	Multipart bool // always send multipart bodies, even without an attachment
	Paths     Paths
}

// Option returns the allowed value matching v, ignoring case and surrounding
// space. Fields without options accept any value unchanged.
func (f FieldSpec) Option(v string) (string, bool) {
	if len(f.Options) == 0 {
		return v, true
	}
	v = strings.TrimSpace(v)
	for _, o := range f.Options {
		if strings.EqualFold(o, v) {
			return o, true
		}
	}
	return "", false
}

// Field returns the spec for name.
func (d Descriptor) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// CanCreate reports whether the type has a create endpoint.
func (d Descriptor) CanCreate() bool { return d.Paths.Create != "" }
