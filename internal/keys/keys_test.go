package keys

import "testing"

func TestRecord(t *testing.T) {
	if got := Record("User", 42); got != "User:42" {
		t.Errorf("expected 'User:42', got %q", got)
	}
}

func TestCounter(t *testing.T) {
	if got := Counter("User"); got != "User:mid" {
		t.Errorf("expected 'User:mid', got %q", got)
	}
}

func TestUnique(t *testing.T) {
	if got := Unique("User", "username", "daniel"); got != "User:username:daniel" {
		t.Errorf("expected 'User:username:daniel', got %q", got)
	}
}

func TestUniqueDistinctAcrossModels(t *testing.T) {
	a := Unique("User", "name", "x")
	b := Unique("Account", "name", "x")
	if a == b {
		t.Errorf("keys for different models collide: %q", a)
	}
}

func TestValidModelName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "User", true},
		{"with digits", "User2", true},
		{"with underscore", "user_account", true},
		{"empty", "", false},
		{"leading underscore", "_User", false},
		{"leading digit", "2User", false},
		{"colon", "User:x", false},
		{"space", "User x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidModelName(tt.input); got != tt.expected {
				t.Errorf("ValidModelName(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidPropertyName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "username", true},
		{"leading underscore", "_internal", true},
		{"with digits", "addr2", true},
		{"empty", "", false},
		{"leading digit", "2fast", false},
		{"dash", "user-name", false},
		{"colon", "user:name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPropertyName(tt.input); got != tt.expected {
				t.Errorf("ValidPropertyName(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStorable(t *testing.T) {
	if Storable("_hidden") {
		t.Error("underscore-prefixed names must not be storable")
	}
	if !Storable("visible") {
		t.Error("plain names must be storable")
	}
	if Storable("") {
		t.Error("empty name must not be storable")
	}
}
