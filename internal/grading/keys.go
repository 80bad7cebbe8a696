package grading

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlatVersion selects the top-level mapping of a key file as the key.
const FlatVersion = "flat"

var (
	// ErrVersionNotFound is returned when a requested key version is absent.
	ErrVersionNotFound = errors.New("answer key version not found")

	// ErrInvalidKey is returned when a key file cannot be parsed.
	ErrInvalidKey = errors.New("invalid answer key")
)

// AnswerKey maps question numbers to correct option letters. It is
// immutable once built and safe to share between goroutines.
type AnswerKey struct {
	answers map[int]string
	entries int
}

// NewAnswerKey builds a key from question -> letter entries. Letters are
// trimmed and upper-cased. An empty letter still counts as an entry of the
// key but has no correct option.
func NewAnswerKey(entries map[int]string) (*AnswerKey, error) {
	answers := make(map[int]string, len(entries))
	for q, letter := range entries {
		if q < 1 {
			return nil, fmt.Errorf("%w: question number %d must be positive", ErrInvalidKey, q)
		}
		l, ok, err := normalizeLetter(letter)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidKey, q, err)
		}
		if ok {
			answers[q] = l
		}
	}
	return &AnswerKey{answers: answers, entries: len(entries)}, nil
}

// Correct returns the key letter for question q.
func (k *AnswerKey) Correct(q int) (string, bool) {
	if k == nil {
		return "", false
	}
	l, ok := k.answers[q]
	return l, ok
}

// Len is the number of entries in the key, blank ones included.
func (k *AnswerKey) Len() int {
	if k == nil {
		return 0
	}
	return k.entries
}

// Questions returns the question numbers that have a letter, in ascending
// order.
func (k *AnswerKey) Questions() []int {
	if k == nil {
		return nil
	}
	qs := make([]int, 0, len(k.answers))
	for q := range k.answers {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// KeySet is a parsed answer-key file: named versions plus any question
// entries found at the top level.
type KeySet struct {
	versions map[string]*AnswerKey
	flat     *AnswerKey
}

// LoadKeySet reads a JSON or YAML answer-key file.
func LoadKeySet(path string) (*KeySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer keys: %w", err)
	}
	set, err := ParseKeySet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseKeySet parses answer keys in either of these shapes (JSON shown,
// YAML equivalent accepted):
//
//	{"v1": {"1": "A", "2": "C"}, "v2": {"1": "B"}}
//	{"1": "A", "2": "C"}
//
// Nested mappings become versions; scalar entries form the flat key.
func ParseKeySet(data []byte) (*KeySet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	set := &KeySet{versions: make(map[string]*AnswerKey)}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		set.flat = &AnswerKey{answers: map[int]string{}}
		return set, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidKey)
	}

	flat := make(map[int]string)
	for i := 0; i+1 < len(top.Content); i += 2 {
		name, value := top.Content[i].Value, top.Content[i+1]
		switch value.Kind {
		case yaml.MappingNode:
			if name == FlatVersion {
				return nil, fmt.Errorf("%w: %q is reserved and cannot name a version", ErrInvalidKey, FlatVersion)
			}
			key, err := parseEntries(value)
			if err != nil {
				return nil, fmt.Errorf("version %q: %w", name, err)
			}
			set.versions[name] = key
		case yaml.ScalarNode:
			q, err := parseQuestion(name)
			if err != nil {
				return nil, err
			}
			flat[q] = scalarLetter(value)
		default:
			return nil, fmt.Errorf("%w: entry %q must be a letter or a mapping", ErrInvalidKey, name)
		}
	}

	key, err := NewAnswerKey(flat)
	if err != nil {
		return nil, err
	}
	set.flat = key
	return set, nil
}

// Versions returns the version names in sorted order.
func (s *KeySet) Versions() []string {
	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the key for version. FlatVersion returns the top-level
// entries; it fails when the file has none.
func (s *KeySet) Resolve(version string) (*AnswerKey, error) {
	if version == FlatVersion {
		if s.flat == nil || s.flat.Len() == 0 {
			return nil, fmt.Errorf("%w: %q (no top-level question entries)", ErrVersionNotFound, version)
		}
		return s.flat, nil
	}
	key, ok := s.versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrVersionNotFound, version, strings.Join(s.Versions(), ", "))
	}
	return key, nil
}

func parseEntries(node *yaml.Node) (*AnswerKey, error) {
	entries := make(map[int]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		q, err := parseQuestion(k.Value)
		if err != nil {
			return nil, err
		}
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: question %d must map to a letter", ErrInvalidKey, q)
		}
		entries[q] = scalarLetter(v)
	}
	return NewAnswerKey(entries)
}

// scalarLetter returns the letter text of a key entry; null reads as blank.
func scalarLetter(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func parseQuestion(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q < 1 {
		return 0, fmt.Errorf("%w: %q is not a question number", ErrInvalidKey, s)
	}
	return q, nil
}

// normalizeLetter trims and upper-cases a key letter. The bool is false
// for an empty letter.
func normalizeLetter(s string) (string, bool, error) {
	l := strings.ToUpper(strings.TrimSpace(s))
	if l == "" {
		return "", false, nil
	}
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return "", false, fmt.Errorf("%q is not an option letter", s)
	}
	return l, true, nil
}
