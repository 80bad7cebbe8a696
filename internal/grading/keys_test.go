package grading

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseKeySet(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantVersions []string
		version      string
		wantKey      map[int]string
		wantLen      int
	}{
		{
			name:         "versioned JSON",
			data:         `{"v1": {"1": "A", "2": "c"}, "v2": {"1": "B"}}`,
			wantVersions: []string{"v1", "v2"},
			version:      "v1",
			wantKey:      map[int]string{1: "A", 2: "C"},
			wantLen:      2,
		},
		{
			name:         "versioned YAML",
			data:         "v2:\n  1: D\n  3: b\nv1:\n  1: A\n",
			wantVersions: []string{"v1", "v2"},
			version:      "v2",
			wantKey:      map[int]string{1: "D", 3: "B"},
			wantLen:      2,
		},
		{
			name:         "flat JSON",
			data:         `{"1": "A", "2": " b ", "3": null, "4": ""}`,
			wantVersions: []string{},
			version:      FlatVersion,
			wantKey:      map[int]string{1: "A", 2: "B"},
			wantLen:      4,
		},
		{
			name:         "blank versioned entries",
			data:         "v1:\n  1: C\n  2:\n  3: ''\n",
			wantVersions: []string{"v1"},
			version:      "v1",
			wantKey:      map[int]string{1: "C"},
			wantLen:      3,
		},
		{
			name:         "mixed",
			data:         "1: A\nv1:\n  1: B\n",
			wantVersions: []string{"v1"},
			version:      FlatVersion,
			wantKey:      map[int]string{1: "A"},
			wantLen:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseKeySet([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseKeySet failed: %v", err)
			}
			if got := set.Versions(); !reflect.DeepEqual(got, tt.wantVersions) {
				t.Errorf("Versions: got %v, want %v", got, tt.wantVersions)
			}
			key, err := set.Resolve(tt.version)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.version, err)
			}
			if key.Len() != tt.wantLen {
				t.Errorf("Len: got %d, want %d", key.Len(), tt.wantLen)
			}
			if len(key.Questions()) != len(tt.wantKey) {
				t.Errorf("Questions: got %v, want %d lettered", key.Questions(), len(tt.wantKey))
			}
			for q, want := range tt.wantKey {
				if got, ok := key.Correct(q); !ok || got != want {
					t.Errorf("question %d: got %q (%v), want %q", q, got, ok, want)
				}
			}
		})
	}
}

func TestParseKeySet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a mapping", `["A", "B"]`},
		{"bad letter", `{"v1": {"1": "AB"}}`},
		{"digit letter", `{"1": "4"}`},
		{"bad question", `{"v1": {"one": "A"}}`},
		{"zero question", `{"0": "A"}`},
		{"reserved name", `{"flat": {"1": "A"}}`},
		{"nested list", `{"v1": {"1": ["A"]}}`},
		{"list entry", `{"1": ["A"]}`},
		{"malformed", `{"v1": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKeySet([]byte(tt.data)); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("got %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestKeySet_Resolve_NotFound(t *testing.T) {
	set, err := ParseKeySet([]byte(`{"v1": {"1": "A"}}`))
	if err != nil {
		t.Fatalf("ParseKeySet failed: %v", err)
	}

	for _, version := range []string{"v9", FlatVersion, ""} {
		if _, err := set.Resolve(version); !errors.Is(err, ErrVersionNotFound) {
			t.Errorf("Resolve(%q): got %v, want ErrVersionNotFound", version, err)
		}
	}
}

func TestLoadKeySet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	if err := os.WriteFile(path, []byte("v1:\n  1: A\n  2: B\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	set, err := LoadKeySet(path)
	if err != nil {
		t.Fatalf("LoadKeySet failed: %v", err)
	}
	key, err := set.Resolve("v1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(key.Questions(), []int{1, 2}) {
		t.Errorf("Questions: got %v, want [1 2]", key.Questions())
	}

	if _, err := LoadKeySet(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAnswerKey_Nil(t *testing.T) {
	var key *AnswerKey
	if key.Len() != 0 || key.Questions() != nil {
		t.Error("nil key should be empty")
	}
	if _, ok := key.Correct(1); ok {
		t.Error("nil key should have no entries")
	}
}

func TestNewAnswerKey_Invalid(t *testing.T) {
	if _, err := NewAnswerKey(map[int]string{-1: "A"}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("negative question: got %v, want ErrInvalidKey", err)
	}
}
