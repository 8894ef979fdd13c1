package compute

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is one object-shaped JSON document read from a computation's stdout
type Document struct {
	Fields map[string]json.RawMessage
	Raw    []byte
}

var (
	tokNaN      = []byte("NaN")
	tokInf      = []byte("Infinity")
	tokNegInf   = []byte("-Infinity")
	nullLiteral = []byte("null")
)

// parseDocument decodes exactly one JSON object.
// Python's non-finite literals are read as null.
func parseDocument(out []byte) (*Document, error) {
	clean := sanitizeNonFinite(bytes.TrimSpace(out))
	if len(clean) == 0 {
		return nil, fmt.Errorf("empty output")
	}
	if clean[0] != '{' {
		return nil, fmt.Errorf("output is not a JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(clean, &fields); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}

	return &Document{Fields: fields, Raw: clean}, nil
}

// errorMessage reports an embedded {"error": "..."} field
func (d *Document) errorMessage() (string, bool, error) {
	raw, ok := d.Fields["error"]
	if !ok || isNull(raw) {
		return "", false, nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", false, fmt.Errorf("error field: %w", err)
	}
	return msg, true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullLiteral)
}

func sanitizeNonFinite(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))

	inString, escaped := false, false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
		case bytes.HasPrefix(b[i:], tokNegInf):
			out.Write(nullLiteral)
			i += len(tokNegInf) - 1
		case bytes.HasPrefix(b[i:], tokInf):
			out.Write(nullLiteral)
			i += len(tokInf) - 1
		case bytes.HasPrefix(b[i:], tokNaN):
			out.Write(nullLiteral)
			i += len(tokNaN) - 1
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}
