package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"node-a", true},
		{"nœud", true},
		{"api gateway", true},
		{strings.Repeat("x", MaxIDLength), true},
		{"", false},
		{strings.Repeat("x", MaxIDLength+1), false},
		{"a\x07b", false},
		{"a\nb", false},
		{"\xff\xfe", false},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateID(%q) = %v, want ok=%v", tt.id, err, tt.ok)
		}
		if err != nil && !Is(err, ErrCodeInvalidID) {
			t.Errorf("ValidateID(%q) code = %s", tt.id, GetCode(err))
		}
	}
}

func TestValidateRedisURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"redis://localhost:6379/0", true},
		{"rediss://cache.internal:6380", true},
		{"redis://:secret@localhost:6379", true},
		{"unix:///var/run/redis.sock", true},
		{"", false},
		{"http://localhost:6379", false},
		{"localhost:6379", false},
		{"redis://", false},
		{"unix://", false},
		{"redis://%zz", false},
	}
	for _, tt := range tests {
		err := ValidateRedisURL(tt.url)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateRedisURL(%q) = %v, want ok=%v", tt.url, err, tt.ok)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateRedisURL(%q) code = %s", tt.url, GetCode(err))
		}
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", "svg", "png"); err != nil {
		t.Errorf("ValidateFormat(svg) = %v", err)
	}
	err := ValidateFormat("gif", "svg", "png")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Fatalf("ValidateFormat(gif) = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "svg, png") {
		t.Errorf("error does not list allowed formats: %v", err)
	}
}
