package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStorage, cause, "failed to save run")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidGraph, "test"),
			code:     ErrCodeInvalidGraph,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidGraph, "test"),
			code:     ErrCodeStorage,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeStorage, New(ErrCodeInvalidGraph, "inner"), "outer"),
			code:     ErrCodeStorage,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidGraph,
			expected: false,
		},
		{
			name:     "stdlib wrapped Error",
			err:      wrapStd(New(ErrCodeDegenerateGraph, "no paths")),
			code:     ErrCodeDegenerateGraph,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func wrapStd(err error) error {
	return &stdWrapper{err}
}

type stdWrapper struct{ err error }

func (w *stdWrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w *stdWrapper) Unwrap() error { return w.err }

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRunNotFound, "missing")); got != ErrCodeRunNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeRunNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidGraph, "two initial states")); got != "two initial states" {
		t.Errorf("UserMessage() = %v", got)
	}
	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage() = %v", got)
	}
}

func TestValidateStateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid", id: "STATE_GREETING"},
		{name: "valid with digits", id: "STATE_STEP_2"},
		{name: "empty", id: "", wantErr: true},
		{name: "control character", id: "STATE\x01", wantErr: true},
		{name: "path traversal", id: "../etc/passwd", wantErr: true},
		{name: "backslash", id: "STATE\\X", wantErr: true},
		{name: "too long", id: string(make([]byte, 300)), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{name: "valid", filename: "report.txt"},
		{name: "empty", filename: "", wantErr: true},
		{name: "path separator", filename: "dir/report.txt", wantErr: true},
		{name: "traversal", filename: "..report", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}
