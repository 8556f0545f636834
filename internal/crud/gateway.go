package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

// Gateway validates, encodes and dispatches mutations for one entity type.
type Gateway struct {
	desc      Descriptor
	transport Transport
}

// NewGateway returns a gateway for desc.
func NewGateway(desc Descriptor, transport Transport) *Gateway {
	return &Gateway{desc: desc, transport: transport}
}

// Validate checks snap against the descriptor. missing lists the labels of
// empty required fields; invalid describes option fields holding a value
// outside their options. Both empty means valid.
func (g *Gateway) Validate(snap Snapshot) (missing, invalid []string) {
	for _, f := range g.desc.Fields {
		v := strings.TrimSpace(snap.Draft.Get(f.Name))
		if v == "" {
			if f.Required {
				missing = append(missing, f.Label)
			}
			continue
		}
		if _, ok := f.Option(v); !ok {
			invalid = append(invalid, fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", ")))
		}
	}
	// edits keep whatever image is stored server side
	if g.desc.Image.Enabled && g.desc.Image.RequiredOnCreate && snap.Attachment == nil && snap.Mode == ModeCreating {
		missing = append(missing, "Image")
	}
	return missing, invalid
}

// Encode builds the request for snap: multipart when an attachment is staged or
// the type always carries binary content, JSON otherwise.
func (g *Gateway) Encode(snap Snapshot) (Request, error) {
	req := Request{}
	switch snap.Mode {
	case ModeCreating:
		if !g.desc.CanCreate() {
			return Request{}, ErrCreateUnsupported
		}
		req.Method = http.MethodPost
		req.Path = g.desc.Paths.Create
	case ModeEditing:
		req.Method = http.MethodPut
		req.Path = g.desc.Paths.UpdatePath(snap.ID)
	default:
		panic(ErrSessionClosed)
	}

	fields := g.payloadFields(snap.Draft)
	if snap.Attachment != nil || g.desc.Multipart {
		body, ct, err := encodeMultipart(fields, snap.Attachment)
		if err != nil {
			return Request{}, err
		}
		req.Body, req.ContentType = body, ct
		return req, nil
	}

	obj := make(map[string]string, len(fields))
	for _, f := range fields {
		obj[f.Name] = f.Value
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s: %w", g.desc.Name, err)
	}
	req.Body, req.ContentType = body, "application/json"
	return req, nil
}

func (g *Gateway) payloadFields(d Draft) []FieldValue {
	fields := d.Fields()
	for i := range fields {
		spec, ok := g.desc.Field(fields[i].Name)
		if !ok {
			continue
		}
		if spec.Trim {
			fields[i].Value = strings.TrimSpace(fields[i].Value)
		}
		if canonical, ok := spec.Option(fields[i].Value); ok && len(spec.Options) > 0 {
			fields[i].Value = canonical
		}
	}
	return fields
}

// Submit validates and dispatches snap. Validation failures never reach the
// transport. The returned error is always a *Error.
func (g *Gateway) Submit(ctx context.Context, snap Snapshot) error {
	if missing, invalid := g.Validate(snap); len(missing) > 0 || len(invalid) > 0 {
		return &Error{Kind: KindValidationFailed, Entity: g.desc.Name, Missing: missing, Invalid: invalid}
	}
	req, err := g.Encode(snap)
	if err != nil {
		return &Error{Kind: KindSaveFailed, Entity: g.desc.Name, Err: err}
	}
	ctx = ensureRequestID(ctx)
	if err := g.transport.Do(ctx, req, nil); err != nil {
		return &Error{Kind: KindSaveFailed, Entity: g.desc.Name, Err: err}
	}
	return nil
}

// Delete issues DELETE for id. Callers confirm through a Gate first.
func (g *Gateway) Delete(ctx context.Context, id Identifier) error {
	ctx = ensureRequestID(ctx)
	req := Request{Method: http.MethodDelete, Path: g.desc.Paths.DeletePath(id)}
	if err := g.transport.Do(ctx, req, nil); err != nil {
		return &Error{Kind: KindDeleteFailed, Entity: g.desc.Name, Err: err}
	}
	return nil
}

func ensureRequestID(ctx context.Context) context.Context {
	if RequestID(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}

func encodeMultipart(fields []FieldValue, att *Attachment) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}
	if att != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, att.Filename))
		ct := att.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
