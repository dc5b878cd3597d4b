// Package settings declares the user-facing settings of a post-processing
// script and resolves configured values against that declaration.
//
// A Schema renders to the setting-data JSON document slicer front ends use to
// build their settings panels; a Store is the resolved key-value view a
// script reads while it runs.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// Type is the value type of a setting.
type Type string

const (
	TypeBool   Type = "bool"
	TypeFloat  Type = "float"
	TypeInt    Type = "int"
	TypeString Type = "str"
)

// Definition declares one setting.
type Definition struct {
	Key         string
	Label       string
	Description string
	Type        Type
	Unit        string
	Default     any
	// Enabled names a bool setting that gates this one in the UI. Empty
	// means always enabled.
	Enabled string
}

// Schema is the ordered settings declaration of one script.
type Schema struct {
	Name        string
	Key         string
	Version     int
	Metadata    map[string]any
	Definitions []Definition
}

// Lookup finds a definition by key.
func (s Schema) Lookup(key string) (Definition, bool) {
	for _, def := range s.Definitions {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

// Keys returns the setting keys in declaration order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.Definitions))
	for _, def := range s.Definitions {
		keys = append(keys, def.Key)
	}
	return keys
}

// Validate checks the declaration itself: unique keys, defaults matching
// their type, and enabled gates that reference bool settings.
func (s Schema) Validate() error {
	if s.Key == "" {
		return perrors.ValidationFailed("schema.key", "must not be empty")
	}

	seen := make(map[string]Definition, len(s.Definitions))
	for _, def := range s.Definitions {
		if def.Key == "" {
			return perrors.ValidationFailed("schema.settings", "setting key must not be empty")
		}
		if _, dup := seen[def.Key]; dup {
			return perrors.ValidationFailed("schema.settings."+def.Key, "duplicate setting key")
		}
		if _, err := coerce(def.Type, def.Default); err != nil {
			return perrors.InvalidSettingValue(def.Key, def.Default, err)
		}
		seen[def.Key] = def
	}

	for _, def := range s.Definitions {
		if def.Enabled == "" {
			continue
		}
		gate, ok := seen[def.Enabled]
		if !ok || gate.Type != TypeBool {
			return perrors.ValidationFailed("schema.settings."+def.Key+".enabled",
				fmt.Sprintf("%q is not a bool setting", def.Enabled))
		}
	}

	return nil
}

// definitionJSON fixes the field order of a rendered definition.
type definitionJSON struct {
	Label        string `json:"label"`
	Description  string `json:"description"`
	Unit         string `json:"unit,omitempty"`
	Type         Type   `json:"type"`
	DefaultValue any    `json:"default_value"`
	Enabled      string `json:"enabled,omitempty"`
}

// JSON renders the setting-data document with settings in declaration order.
func (s Schema) JSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, value any, last bool) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		fmt.Fprintf(&buf, "%q:", name)
		buf.Write(encoded)
		if !last {
			buf.WriteByte(',')
		}
		return nil
	}

	metadata := s.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if err := writeField("name", s.Name, false); err != nil {
		return nil, err
	}
	if err := writeField("key", s.Key, false); err != nil {
		return nil, err
	}
	if err := writeField("metadata", metadata, false); err != nil {
		return nil, err
	}
	if err := writeField("version", s.Version, false); err != nil {
		return nil, err
	}

	buf.WriteString(`"settings":{`)
	for i, def := range s.Definitions {
		rendered := definitionJSON{
			Label:        def.Label,
			Description:  def.Description,
			Unit:         def.Unit,
			Type:         def.Type,
			DefaultValue: def.Default,
			Enabled:      def.Enabled,
		}
		if err := writeField(def.Key, rendered, i == len(s.Definitions)-1); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent schema: %w", err)
	}
	return out.Bytes(), nil
}
