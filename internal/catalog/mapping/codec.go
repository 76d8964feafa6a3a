package mapping

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes the entries as a JSON object in order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object, null, or an empty array (how empty
// associative payloads were historically serialized).
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch tok {
	case nil:
		*m = Mapping{}
		return nil
	case json.Delim('['):
		end, err := dec.Token()
		if err != nil || end != json.Delim(']') {
			return fmt.Errorf("%w: expected an object, got a non-empty array", ErrMalformed)
		}
		*m = Mapping{}
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("%w: expected an object", ErrMalformed)
	}

	var out Mapping
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, _ := keyTok.(string)
		if key == "" {
			return fmt.Errorf("%w: empty key", ErrMalformed)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrMalformed, key)
		}
		seen[key] = struct{}{}

		v, err := decodeJSONValue(dec)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out.entries = append(out.entries, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	*m = out
	return nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch t := tok.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		if t != '[' {
			return Value{}, fmt.Errorf("%w: nested objects are not supported", ErrMalformed)
		}
		items := []string{}
		for dec.More() {
			itemTok, err := dec.Token()
			if err != nil {
				return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			s, ok := itemTok.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: list items must be strings", ErrMalformed)
			}
			items = append(items, s)
		}
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("%w: value must be a string, a list of strings or a bool, got %T", ErrMalformed, tok)
	}
}

// UnmarshalYAML decodes a YAML mapping node. Numbers must be quoted; an
// unquoted 1.1 is a float and rejected like any other non-string scalar.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*m = Mapping{}
			return nil
		}
		return fmt.Errorf("%w: line %d: expected a mapping", ErrMalformed, node.Line)
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			*m = Mapping{}
			return nil
		}
		return fmt.Errorf("%w: line %d: expected a mapping, got a non-empty sequence", ErrMalformed, node.Line)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("%w: line %d: expected a mapping", ErrMalformed, node.Line)
	}

	var out Mapping
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return fmt.Errorf("%w: line %d: keys must be non-empty scalars", ErrMalformed, keyNode.Line)
		}
		key := keyNode.Value
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: line %d: duplicate key %q", ErrMalformed, keyNode.Line, key)
		}
		seen[key] = struct{}{}

		v, err := decodeYAMLValue(valNode)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out.entries = append(out.entries, Entry{Key: key, Value: v})
	}
	*m = out
	return nil
}

func decodeYAMLValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			return String(node.Value), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, node.Line, err)
			}
			return Bool(b), nil
		}
		return Value{}, fmt.Errorf("%w: line %d: value must be a string, a list of strings or a bool, got %s", ErrMalformed, node.Line, node.Tag)
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return Value{}, fmt.Errorf("%w: line %d: list items must be strings", ErrMalformed, item.Line)
			}
			items = append(items, item.Value)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("%w: line %d: nested mappings are not supported", ErrMalformed, node.Line)
	}
}

// Value implements driver.Valuer; mappings are stored as JSON text.
func (m Mapping) Value() (driver.Value, error) {
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON and TEXT columns. JSONB columns do not
// keep key order and must not back a Mapping.
func (m *Mapping) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Mapping{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrMalformed, src)
	}
}
