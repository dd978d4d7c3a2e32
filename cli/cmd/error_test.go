package cmd

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  NewError("read source"),
			want: "read source",
		},
		{
			name: "message and cause",
			err:  NewError("read source").Wrap(cause),
			want: "read source: permission denied",
		},
		{
			name: "empty",
			err:  &Error{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "wrapped sentinel",
			err:    ErrReadSource.Wrap(cause),
			target: ErrReadSource,
			want:   true,
		},
		{
			name:   "sentinel with attrs",
			err:    ErrCheckFailed.With(slog.Int("sources", 2)),
			target: ErrCheckFailed,
			want:   true,
		},
		{
			name:   "different sentinel",
			err:    ErrReadSource.Wrap(cause),
			target: ErrCheckFailed,
			want:   false,
		},
		{
			name:   "unwraps to cause",
			err:    ErrReadSource.Wrap(cause),
			target: cause,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrReadSource.Wrap(errors.New("boom")).
		With(slog.String("file", "a.enaml"))

	value := err.LogValue()
	if value.Kind() != slog.KindGroup {
		t.Fatalf("expected group value, got %v", value.Kind())
	}

	got := make(map[string]string)
	for _, attr := range value.Group() {
		got[attr.Key] = attr.Value.String()
	}

	want := map[string]string{
		"error": "read source",
		"cause": "boom",
		"file":  "a.enaml",
	}

	for key, val := range want {
		if got[key] != val {
			t.Errorf("attr %q = %q, want %q", key, got[key], val)
		}
	}
}
