package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidInput, "width must be a number, got %q", "wide"), `INVALID_INPUT: width must be a number, got "wide"`},
		{Wrap(ErrCodeInvalidDocument, cause, "decode json"), "INVALID_DOCUMENT: decode json: unexpected EOF"},
		{New(ErrCodeInvalidDocument, "from and to are required").At("edges[3]"), "INVALID_DOCUMENT: edges[3]: from and to are required"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(ErrCodeInvalidDocument, cause, "decode toml")
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return the cause")
	}
}

func TestAtCopies(t *testing.T) {
	base := New(ErrCodeInvalidDocument, "document has no nodes")
	located := base.At("nodes")
	if base.Field != "" {
		t.Errorf("At mutated the receiver: Field = %q", base.Field)
	}
	if located.Field != "nodes" || located.Code != base.Code || located.Message != base.Message {
		t.Errorf("At() = %+v", located)
	}
}

func TestCodeLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"error", New(ErrCodeInvalidStrategy, "spiral"), ErrCodeInvalidStrategy},
		{"outer code wins", Wrap(ErrCodeInvalidDocument, New(ErrCodeInvalidID, "empty"), "bad node id"), ErrCodeInvalidDocument},
		{"behind fmt.Errorf", fmt.Errorf("diagram.json: %w", New(ErrCodeFileNotFound, "open")), ErrCodeFileNotFound},
		{"rate limited", &RateLimitedError{RetryAfter: 3}, ErrCodeRateLimited},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %s) = false", tt.want)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is matched an unrelated code")
			}
		})
	}
	if Is(errors.New("x"), "") {
		t.Error(`Is(err, "") = true for an uncoded error`)
	}
}

func TestFieldOf(t *testing.T) {
	inner := New(ErrCodeInvalidID, "id cannot be empty")
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidDocument, "dup").At("nodes[1].id"), "nodes[1].id"},
		{Wrap(ErrCodeInvalidDocument, inner.At("id"), "bad node"), "id"},
		{fmt.Errorf("load: %w", New(ErrCodeInvalidDocument, "x").At("edges[0]")), "edges[0]"},
		{inner, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FieldOf(tt.err); got != tt.want {
			t.Errorf("FieldOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrCodeInvalidDocument, errors.New("eof"), "decode json"), "decode json"},
		{New(ErrCodeInvalidDocument, "group %q is a node", "a").At("nodes[1].group"), `nodes[1].group: group "a" is a node`},
		{&RateLimitedError{RetryAfter: 60}, "rate limited: retry after 60 seconds"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage() = %q, want %q", got, tt.want)
		}
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		err  *RateLimitedError
		want string
	}{
		{&RateLimitedError{RetryAfter: 60}, "rate limited: retry after 60 seconds"},
		{&RateLimitedError{}, "rate limited"},
		{&RateLimitedError{RetryAfter: 5, Message: "slow down"}, "slow down"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func ExampleError_At() {
	err := New(ErrCodeInvalidDocument, "id %q already used by a wrapper", "db").At("nodes[4].id")
	fmt.Println(err)
	fmt.Println(FieldOf(err))
	// Output:
	// INVALID_DOCUMENT: nodes[4].id: id "db" already used by a wrapper
	// nodes[4].id
}
