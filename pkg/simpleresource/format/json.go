package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// JSON accepts any well-formed JSON document, scalars included
type JSON struct{}

func (JSON) Family() simpleresource.Family { return simpleresource.FamilyJSON }

func (JSON) Matches(name string) bool { return hasExtension(name, ".json") }

func (j JSON) Validate(content []byte) error {
	if json.Valid(content) {
		return nil
	}
	var v any
	reason := "malformed document"
	if err := json.Unmarshal(content, &v); err != nil {
		reason = err.Error()
	}
	return &simpleresource.ValidationError{Family: j.Family(), Reason: reason}
}

// Decode returns the compacted document as a json.RawMessage so key order and
// number precision survive re-encoding.
func (j JSON) Decode(content []byte) (any, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, content); err != nil {
		return nil, &simpleresource.ValidationError{
			Family: j.Family(),
			Reason: fmt.Sprintf("stored document does not parse: %v", err),
		}
	}
	return json.RawMessage(buf.Bytes()), nil
}
