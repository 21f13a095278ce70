// Package lang defines the closed set of target languages and the lookup table
// that maps each of them to a file extension and a template namespace.
package lang

import (
	"fmt"
	"sort"
	"strings"
)

// Language identifies a generated target language.
type Language int

const (
	Java Language = iota + 1
	Scala
)

// DefaultExtension is used for every language without its own entry in the table.
const DefaultExtension = ".java"

// Entry describes how files for one language are named and where its templates live.
type Entry struct {
	Name      string
	Extension string
	Namespace string
}

var table = map[Language]Entry{
	Java:  {Name: "java", Extension: DefaultExtension, Namespace: "java"},
	Scala: {Name: "scala", Extension: ".scala", Namespace: "scala"},
}

// Lookup returns the table entry for l.
func Lookup(l Language) (Entry, bool) {
	s, ok := table[l]
	return s, ok
}

// Extension returns the file extension for l, including the leading dot.
func (l Language) Extension() string {
	if s, ok := table[l]; ok && s.Extension != "" {
		return s.Extension
	}
	return DefaultExtension
}

// Namespace returns the template directory for l, or "" if l is unknown.
func (l Language) Namespace() string {
	return table[l].Namespace
}

// Valid reports whether l is a member of the table.
func (l Language) Valid() bool {
	_, ok := table[l]
	return ok
}

func (l Language) String() string {
	if s, ok := table[l]; ok {
		return s.Name
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

// Parse resolves a language by name, ignoring case and surrounding space.
func Parse(name string) (Language, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for l, s := range table {
		if s.Name == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown language %q (supported: %s)", name, strings.Join(Names(), ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown language %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration files
// can name a language directly.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// All returns every supported language in declaration order.
func All() []Language {
	langs := make([]Language, 0, len(table))
	for l := range table {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Names returns the names of all supported languages in declaration order.
func Names() []string {
	langs := All()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.String()
	}
	return names
}
