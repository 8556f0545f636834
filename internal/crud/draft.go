package crud

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// FieldValue is one staged field of a draft.
type FieldValue struct {
	Name  string
	Value string
}

// Draft is the mutable staging copy of an entity's fields, in descriptor order.
type Draft struct {
	fields []FieldValue
}

func newDraft(desc Descriptor, values map[string]string) Draft {
	fields := make([]FieldValue, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		fields = append(fields, FieldValue{Name: f.Name, Value: values[f.Name]})
	}
	return Draft{fields: fields}
}

// Get returns the staged value of name.
func (d Draft) Get(name string) string {
	for _, f := range d.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Fields returns a copy of the staged fields in order.
func (d Draft) Fields() []FieldValue {
	out := make([]FieldValue, len(d.fields))
	copy(out, d.fields)
	return out
}

// Values returns the staged fields as a map.
func (d Draft) Values() map[string]string {
	out := make(map[string]string, len(d.fields))
	for _, f := range d.fields {
		out[f.Name] = f.Value
	}
	return out
}

// Len is the number of staged fields.
func (d Draft) Len() int { return len(d.fields) }

func (d Draft) clone() Draft { return Draft{fields: d.Fields()} }

func (d *Draft) set(name, value string) bool {
	for i := range d.fields {
		if d.fields[i].Name == name {
			d.fields[i].Value = value
			return true
		}
	}
	return false
}

// Attachment is a staged binary payload, typically a selected image.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentFromFile reads path into an Attachment, guessing its content type.
func AttachmentFromFile(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &Attachment{
		Filename:    filepath.Base(path),
		ContentType: ct,
		Data:        data,
	}, nil
}
