package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pinpanel/internal/config"
)

// feedDocument is the wire envelope of the appointment feed. A feed that can
// answer but has nothing useful to say sets ok=false; consumers then keep
// whatever they showed before.
type feedDocument struct {
	OK    bool          `json:"ok"`
	Items []Appointment `json:"items"`
}

// DecodeFeed reads the JSON feed document. Both transport and document
// failures surface as errors; a partial result is never returned.
func DecodeFeed(r io.Reader) ([]Appointment, error) {
	var doc feedDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedDecode, err)
	}
	if !doc.OK {
		return nil, errors.New(config.ErrFeedNotOK)
	}
	return doc.Items, nil
}

// EncodeFeed renders a collection as the JSON feed document. An empty
// collection still serializes items as [] so consumers never see null.
func EncodeFeed(items []Appointment) ([]byte, error) {
	doc := feedDocument{OK: true, Items: items}
	if doc.Items == nil {
		doc.Items = []Appointment{}
	}
	return json.Marshal(doc)
}
