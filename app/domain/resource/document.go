package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the persisted shape {_id, owner_username, published, <type fields>}.
type Document map[string]any

func (r *Resource) ToDocument() Document {
	doc := make(Document, len(r.Fields)+3)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc[StoreIDField] = r.ID
	doc[OwnerField] = r.OwnerUsername
	doc[PublishedField] = r.Published
	return doc
}

// DecodeDocument parses a stored document. Numbers stay json.Number so
// integers beyond float64 precision survive Put(Get(id)).
func DecodeDocument(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func FromDocument(kind Kind, doc Document) (*Resource, error) {
	id, ok := doc[StoreIDField].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, StoreIDField)
	}
	owner, _ := doc[OwnerField].(string)
	published, _ := doc[PublishedField].(bool)
	return &Resource{
		ID:            id,
		Kind:          kind,
		OwnerUsername: owner,
		Published:     published,
		Fields:        stripReserved(doc),
	}, nil
}

// Encode converts a typed view (a struct with id, owner_username and
// published JSON fields) into a Resource.
func Encode(kind Kind, src any) (*Resource, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	m, err := DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	id, _ := m[IDField].(string)
	owner, _ := m[OwnerField].(string)
	published, _ := m[PublishedField].(bool)
	return &Resource{
		ID:            id,
		Kind:          kind,
		OwnerUsername: owner,
		Published:     published,
		Fields:        stripReserved(m),
	}, nil
}

// Decode fills a typed view from the resource's public shape.
func Decode(r *Resource, dst any) error {
	raw, err := json.Marshal(r.View())
	if err != nil {
		return fmt.Errorf("decode %s %s: %w", r.Kind, r.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.Kind, r.ID, err)
	}
	return nil
}

func stripReserved(m map[string]any) map[string]any {
	fields := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case StoreIDField, IDField, OwnerField, PublishedField:
			continue
		}
		fields[k] = v
	}
	return fields
}
