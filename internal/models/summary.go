package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const noSummary = "No details available"

// SummaryFields is the structured summary shape some models answer with.
type SummaryFields struct {
	Position    string
	Company     string
	Location    string
	Salary      string
	Description string
}

// Summary holds the verdict's summary in whichever shape the model chose:
// a plain string, an object with known fields, or anything else kept raw.
type Summary struct {
	Text   string
	Fields *SummaryFields
	Raw    json.RawMessage
}

func TextSummary(s string) Summary {
	return Summary{Text: s}
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	*s = Summary{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &s.Text)
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		s.Fields = &SummaryFields{
			Position:    stringField(obj, "position"),
			Company:     stringField(obj, "company"),
			Location:    stringField(obj, "location"),
			Salary:      stringField(obj, "salary"),
			Description: stringField(obj, "description"),
		}
	}
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s Summary) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(s.Text)
}

// Format collapses the summary into one display string. It never returns "".
func (s Summary) Format() string {
	if strings.TrimSpace(s.Text) != "" {
		return s.Text
	}

	if f := s.Fields; f != nil {
		if f.Description != "" {
			return f.Description
		}
		var parts []string
		if f.Position != "" {
			parts = append(parts, "🎯 "+f.Position)
		}
		if f.Company != "" {
			parts = append(parts, "🏢 "+f.Company)
		}
		if f.Location != "" {
			parts = append(parts, "📍 "+f.Location)
		}
		if f.Salary != "" {
			parts = append(parts, "💰 "+f.Salary)
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	if raw := strings.TrimSpace(string(s.Raw)); raw != "" && raw != `""` {
		return raw
	}
	return noSummary
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str)
	}
	if b, err := json.Marshal(v); err == nil {
		if _, isObj := v.(map[string]any); isObj {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
