// Package obsidian builds and parses markdown notes with YAML frontmatter,
// the on-disk format book notes are written in.
package obsidian

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Note represents a complete markdown document with YAML frontmatter and body content.
type Note struct {
	Frontmatter *Frontmatter
	Body        string
}

// Frontmatter provides typed access to YAML frontmatter with sorted keys for deterministic output.
type Frontmatter struct {
	fields map[string]any
	keys   []string // sorted for deterministic serialization
}

// NewFrontmatter creates a new empty Frontmatter.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{fields: make(map[string]any)}
}

// ParseMarkdown parses a markdown document with YAML frontmatter.
// Missing frontmatter is valid and yields an empty Frontmatter.
func ParseMarkdown(content []byte) (*Note, error) {
	contentStr := string(content)

	if !strings.HasPrefix(contentStr, "---\n") && !strings.HasPrefix(contentStr, "---\r\n") {
		return &Note{Frontmatter: NewFrontmatter(), Body: contentStr}, nil
	}

	afterFirst := contentStr[3:]
	endIdx := strings.Index(afterFirst, "\n---\n")
	if endIdx == -1 {
		endIdx = strings.Index(afterFirst, "\r\n---\r\n")
		if endIdx == -1 {
			// Unterminated frontmatter, treat the whole document as body
			return &Note{Frontmatter: NewFrontmatter(), Body: contentStr}, nil
		}
		endIdx += 4
	}

	frontmatterStr := afterFirst[:endIdx]
	bodyStartIdx := 3 + len(frontmatterStr) + 5
	if bodyStartIdx > len(contentStr) {
		bodyStartIdx = len(contentStr)
	}
	body := strings.TrimPrefix(contentStr[bodyStartIdx:], "\n")

	var data map[string]any
	if err := yaml.Unmarshal([]byte(frontmatterStr), &data); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	fm := NewFrontmatter()
	for key, value := range data {
		fm.Set(key, value)
	}

	return &Note{Frontmatter: fm, Body: body}, nil
}

// Build serializes the Note back to markdown with YAML frontmatter.
// Tags are always written in flow-style format: [a, b, c]
func (n *Note) Build() ([]byte, error) {
	var buf bytes.Buffer

	if len(n.Frontmatter.keys) > 0 {
		buf.WriteString("---\n")

		frontmatterBytes, err := yaml.Marshal(n.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}

		buf.Write(frontmatterBytes)
		buf.WriteString("---\n")
	}

	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}

// Get retrieves a value from frontmatter.
func (f *Frontmatter) Get(key string) (any, bool) {
	val, ok := f.fields[key]
	return val, ok
}

// Set sets a value in frontmatter, maintaining sorted key order.
func (f *Frontmatter) Set(key string, value any) {
	_, exists := f.fields[key]
	f.fields[key] = value

	if !exists {
		f.keys = append(f.keys, key)
		sort.Strings(f.keys)
	}
}

// Delete removes a key from frontmatter.
func (f *Frontmatter) Delete(key string) {
	delete(f.fields, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// GetString retrieves a string value, returning empty string if not found or wrong type.
func (f *Frontmatter) GetString(key string) string {
	if str, ok := f.fields[key].(string); ok {
		return str
	}
	return ""
}

// GetInt retrieves an int value, returning 0 if not found or wrong type.
func (f *Frontmatter) GetInt(key string) int {
	switch v := f.fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetFloat retrieves a float value, returning 0 if not found or wrong type.
// YAML integers are accepted since a rating of 4 parses as an int.
func (f *Frontmatter) GetFloat(key string) float64 {
	switch v := f.fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetBool retrieves a bool value, returning false if not found or wrong type.
func (f *Frontmatter) GetBool(key string) bool {
	if b, ok := f.fields[key].(bool); ok {
		return b
	}
	return false
}

// GetStringArray retrieves a string array, returning empty slice if not found or wrong type.
func (f *Frontmatter) GetStringArray(key string) []string {
	return TagsFromAny(f.fields[key])
}

// Keys returns a copy of the sorted frontmatter keys.
func (f *Frontmatter) Keys() []string {
	result := make([]string, len(f.keys))
	copy(result, f.keys)
	return result
}

// MarshalYAML implements custom YAML marshaling with sorted keys and flow-style tags.
func (f *Frontmatter) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: make([]*yaml.Node, 0, len(f.keys)*2),
	}

	for _, key := range f.keys {
		val := f.fields[key]

		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: key,
		}

		var valueNode *yaml.Node
		if key == "tags" {
			tags := TagsFromAny(val)
			valueNode = &yaml.Node{
				Kind:  yaml.SequenceNode,
				Style: yaml.FlowStyle,
			}
			for _, tag := range tags {
				valueNode.Content = append(valueNode.Content, &yaml.Node{
					Kind:  yaml.ScalarNode,
					Value: tag,
				})
			}
		} else {
			valueNode = &yaml.Node{}
			if err := valueNode.Encode(val); err != nil {
				return nil, err
			}
		}

		node.Content = append(node.Content, keyNode, valueNode)
	}

	return node, nil
}
