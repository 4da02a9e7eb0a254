package roomid

import (
	"strings"
	"testing"
	"time"

	"github.com/lox/spades/internal/randutil"
)

func TestNew(t *testing.T) {
	id := New()
	if len(id) != 26 {
		t.Errorf("expected 26 characters, got %d", len(id))
	}
	if err := Validate(id); err != nil {
		t.Errorf("generated id failed validation: %v", err)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewDeterministic(t *testing.T) {
	// Same source, same millisecond: identical random tails.
	a := NewGenerator(randutil.New(42)).New()
	b := NewGenerator(randutil.New(42)).New()
	if a[6:] != b[6:] {
		t.Errorf("random tails differ: %s vs %s", a[6:], b[6:])
	}
}

func TestNewTimeSorted(t *testing.T) {
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, New())
		time.Sleep(2 * time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		if strings.Compare(ids[i-1], ids[i]) >= 0 {
			t.Errorf("ids not sorted: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h5n0et5q6mt3v7ms1234abcd", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "81h5n0et5q6mt3v7ms1234abcd", true},
		{"invalid character", "01h5n0et5q6mt3v7ms1234abcu", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%s) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
