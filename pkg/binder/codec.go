package binder

import (
	"bytes"

	"github.com/goccy/go-json"
)

// marshalPayload serializes an outgoing request body. Fields holding the
// no-value representation (nil) are omitted rather than emitted as null, and
// the serialized text is passed through a lower-casing step.
//
// The lower-casing reproduces the original binding layer verbatim. It is not
// a correct general JSON transform (it also lowers mixed-case string values);
// changing it would change the wire format of every generated call, so it is
// kept as documented behavior.
func marshalPayload(v any) ([]byte, error) {
	data, err := json.Marshal(pruneNoValue(v))
	if err != nil {
		return nil, err
	}
	return bytes.ToLower(data), nil
}

// unmarshalResponse decodes a response body. JSON null and absent fields both
// land as the no-value representation of the target.
func unmarshalResponse(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// pruneNoValue drops nil-valued entries from maps recursively so that
// optional fields without a value disappear from the serialized body.
// Struct values are left to the encoder's omitempty handling.
func pruneNoValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			if e == nil {
				continue
			}
			out[k] = pruneNoValue(e)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = pruneNoValue(e)
		}
		return out
	default:
		return v
	}
}
