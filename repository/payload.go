package repository

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is a response body as the notes service sent it: raw JSON bytes
// when the response declared JSON, text otherwise. A declared-JSON body that
// is empty or does not parse is kept as null.
type Payload struct {
	raw    json.RawMessage
	text   string
	isJSON bool
}

func JSONPayload(raw []byte) *Payload {
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		return &Payload{isJSON: true}
	}
	return &Payload{raw: raw, isJSON: true}
}

func TextPayload(text string) *Payload {
	return &Payload{text: text}
}

func (p *Payload) IsJSON() bool { return p.isJSON }

// IsNull reports a JSON payload that is absent, unparseable or literally null.
func (p *Payload) IsNull() bool {
	return p.isJSON && (p.raw == nil || bytes.Equal(bytes.TrimSpace(p.raw), []byte("null")))
}

// Raw returns the JSON bytes exactly as received, or nil.
func (p *Payload) Raw() json.RawMessage { return p.raw }

func (p *Payload) Text() string { return p.text }

// Value returns the payload as a generic Go value: nil, the decoded JSON, or
// the text body.
func (p *Payload) Value() (any, error) {
	if !p.isJSON {
		return p.text, nil
	}
	if p.IsNull() {
		return nil, nil
	}
	var v any
	err := json.Unmarshal(p.raw, &v)
	return v, err
}

// Detail returns the stringified "detail" field of a JSON object payload, or
// "" when it is missing or falsy (null, false, 0, "").
func (p *Payload) Detail() string {
	if !p.isJSON || p.IsNull() {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p.raw, &obj); err != nil {
		return ""
	}
	raw, ok := obj["detail"]
	if !ok {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch d := v.(type) {
	case nil:
		return ""
	case bool:
		if !d {
			return ""
		}
		return "true"
	case float64:
		if d == 0 {
			return ""
		}
		return strconv.FormatFloat(d, 'f', -1, 64)
	case string:
		return d
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return strings.TrimSpace(string(raw))
		}
		return buf.String()
	}
}
