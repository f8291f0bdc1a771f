// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
)

// mockParser is a test parser implementation
type mockParser struct {
	name string
}

func (p *mockParser) ParseFile(path string) (*Header, error) {
	return &Header{Path: path, Kind: KindWAVE}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	parser := &mockParser{name: "wav"}

	registry.Register("wav", parser)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered parser")
	}

	if got != parser {
		t.Error("Registry.Get() returned different parser instance")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, ok := registry.Get("nonexistent")
	if ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_NormalizesExtensions(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	parser := &mockParser{name: "wav"}
	registry.Register(".WAV", parser)

	for _, ext := range []string{"wav", ".wav", "WAV", ".Wav"} {
		if _, ok := registry.Get(ext); !ok {
			t.Errorf("Registry.Get(%q) ok = false, want true", ext)
		}
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavParser := &mockParser{name: "wav"}
	aiffParser := &mockParser{name: "aiff"}
	registry.Register("wav", wavParser)
	registry.Register("aiff", aiffParser)

	tests := []struct {
		path    string
		want    Parser
		wantErr bool
	}{
		{"/tmp/take1.wav", wavParser, false},
		{"take2.AIFF", aiffParser, false},
		{"clip.mxf", nil, true},
		{"noext", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := registry.Lookup(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Lookup(%q) error = %v, want ErrUnknownFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) returned wrong parser", tt.path)
			}
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("wav", &mockParser{})
	registry.Register("aif", &mockParser{})

	if got := len(registry.Extensions()); got != 2 {
		t.Errorf("Extensions() returned %d entries, want 2", got)
	}
}
