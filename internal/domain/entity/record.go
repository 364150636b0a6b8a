package entity

import (
	"encoding/json"

	"medchain/internal/errors"
)

// StoredRecord is one document as returned by the metadata backend.
type StoredRecord json.RawMessage

// Decode unmarshals the record into v.
func (r StoredRecord) Decode(v any) error {
	if len(r) == 0 {
		return errors.New("empty record")
	}

	return errors.Wrap(json.Unmarshal(r, v), "decode stored record")
}

// ID returns the backend document id if the record carries one.
func (r StoredRecord) ID() string {
	var doc struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(r, &doc); err != nil {
		return ""
	}
	if doc.MongoID != "" {
		return doc.MongoID
	}

	return doc.ID
}

// MarshalJSON emits the raw document.
func (r StoredRecord) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}

	return r, nil
}

// UploadedImage is an image attached to a multipart metadata write.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MetadataWrite is one HTTP write to the metadata backend correlated to a ledger tx.
// Payload is sent as JSON, or as multipart form fields when Image is set.
type MetadataWrite struct {
	Method   string
	Endpoint string
	Payload  map[string]any
	Image    *UploadedImage
	TxHash   string
}

// Multipart reports whether the write is a form upload.
func (w MetadataWrite) Multipart() bool {
	return w.Image != nil
}
