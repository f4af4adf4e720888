package session

import "testing"

func TestNewID(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("Failed to generate ID: %v", err)
	}
	if err := ValidateID(id); err != nil {
		t.Errorf("Generated ID %q should validate: %v", id, err)
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			t.Errorf("Session ID must be visible ASCII, found %q", c)
		}
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"6f1c2a43-8f7e-4f6b-9d0a-3b4c5d6e7f80", true},
		{"", false},
		{"not-a-uuid", false},
		{"6F1C2A43-8F7E-4F6B-9D0A-3B4C5D6E7F80", false},
		{"{6f1c2a43-8f7e-4f6b-9d0a-3b4c5d6e7f80}", false},
		{"6f1c2a438f7e4f6b9d0a3b4c5d6e7f80", false},
	}

	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateID(%q): expected valid=%v, got %v", tt.id, tt.valid, err)
		}
	}
}
