// Package frontmatter reads and writes the metadata header of article files.
//
// The header is a flat, line-oriented block between two "---" lines:
//
//	---
//	title: "Shipping an MCP server"
//	date: 2025-03-14
//	tags: ["MCP", "AI"]
//	---
//	Markdown body...
//
// Each line is "key: value". Values are strings, or lists when wrapped in
// square brackets. There are no nested structures, multi-line values or
// escapes. Input without a header is returned unchanged as the body.
package frontmatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

const delimiter = "---"

// Value is a metadata value: a string or a list of strings.
type Value struct {
	str    string
	list   []string
	isList bool
}

// StringValue returns a scalar value.
func StringValue(s string) Value {
	return Value{str: s}
}

// ListValue returns a list value.
func ListValue(items ...string) Value {
	return Value{list: append([]string{}, items...), isList: true}
}

// IsList reports whether v was written in list syntax.
func (v Value) IsList() bool { return v.isList }

// String returns the scalar, or list items joined with ", ".
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}

	return v.str
}

// Strings returns list items. A non-empty scalar is a one-element list.
func (v Value) Strings() []string {
	if v.isList {
		return append([]string{}, v.list...)
	}

	if v.str == "" {
		return []string{}
	}

	return []string{v.str}
}

// Metadata is the parsed header.
type Metadata map[string]Value

// String returns the value for key and whether it was present.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}

	return v.String(), true
}

// List returns the value for key as a list; nil when absent.
func (m Metadata) List(key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}

	return v.Strings()
}

// Document is a parsed file.
type Document struct {
	Data    Metadata
	Content string
}

// headerFormat is a "---" delimited block decoded by the line grammar above.
var headerFormat = frontmatter.NewFormat(delimiter, delimiter, unmarshalHeader)

// Parse splits input into metadata and body. CRLF line endings are accepted.
// When input does not open with a complete header, Data is empty and Content
// is input byte for byte.
func Parse(input string) Document {
	text := strings.ReplaceAll(input, "\r\n", "\n")

	// The header must start on the first byte; the library would also skip
	// leading blank lines and indentation.
	if !strings.HasPrefix(text, delimiter+"\n") {
		return Document{Data: Metadata{}, Content: input}
	}

	var data Metadata

	body, err := frontmatter.Parse(strings.NewReader(text), &data, headerFormat)
	if err != nil || data == nil {
		return Document{Data: Metadata{}, Content: input}
	}

	return Document{Data: data, Content: string(body)}
}

// unmarshalHeader decodes the lines between the delimiters into a *Metadata.
// It is only called once a closing delimiter was found, so a nil result
// after parsing means there was no header.
func unmarshalHeader(raw []byte, v any) error {
	out, ok := v.(*Metadata)
	if !ok {
		return fmt.Errorf("frontmatter: cannot decode into %T", v)
	}

	data := Metadata{}

	for line := range strings.SplitSeq(string(raw), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		data[key] = parseValue(value)
	}

	*out = data

	return nil
}

func parseValue(raw string) Value {
	v := unquote(strings.TrimSpace(raw))

	inner, isList := strings.CutPrefix(v, "[")
	if isList {
		inner, isList = strings.CutSuffix(inner, "]")
	}

	if !isList {
		return StringValue(v)
	}

	items := []string{}

	for part := range strings.SplitSeq(inner, ",") {
		item := unquote(strings.TrimSpace(part))
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return Value{list: items, isList: true}
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1]
	}

	return s
}

// Serialize writes data as a header followed by body. Keys are sorted;
// strings are double-quoted and lists bracketed.
func Serialize(data Metadata, body string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder

	b.WriteString(delimiter + "\n")

	for _, k := range keys {
		v := data[k]

		b.WriteString(k)
		b.WriteString(": ")

		if v.IsList() {
			quoted := make([]string, len(v.list))
			for i, item := range v.list {
				quoted[i] = `"` + item + `"`
			}

			b.WriteString("[" + strings.Join(quoted, ", ") + "]")
		} else {
			b.WriteString(`"` + v.str + `"`)
		}

		b.WriteString("\n")
	}

	b.WriteString(delimiter + "\n")
	b.WriteString(body)

	return b.String()
}
