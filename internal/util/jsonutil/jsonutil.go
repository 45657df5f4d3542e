package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
)

var ErrNoObject = errors.New("jsonutil: no JSON object found in text")

// reObject grabs the outermost {...} span, across newlines. Models often
// wrap JSON in prose or code fences; the greedy match tolerates both.
var reObject = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractObject returns the first JSON object span found in free text.
func ExtractObject(text string) ([]byte, bool) {
	m := reObject.FindString(text)
	if m == "" {
		return nil, false
	}
	return []byte(m), true
}

// UnmarshalExtracted locates a JSON object inside free text and unmarshals
// it into v.
func UnmarshalExtracted(text string, v any) error {
	raw, ok := ExtractObject(text)
	if !ok {
		return ErrNoObject
	}
	return json.Unmarshal(raw, v)
}

// MarshalNoEscape encodes v without escaping <, >, & into < etc., so
// payloads embedded into prompts stay readable.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	raw, err := MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
