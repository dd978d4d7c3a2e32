package log

import (
	"strings"
	"testing"
	"time"
)

func TestLevel_String_NamesAllLevels(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel_RoundTrip(t *testing.T) {
	for name := range Levels() {
		if got := ParseLevel(name); got.String() != name {
			t.Errorf("ParseLevel(%q) = %v", name, got)
		}
	}

	// Unknown strings fall back to the default.
	if got := ParseLevel("verbose"); got != DefaultLevel {
		t.Errorf("ParseLevel(unknown) = %v, want %v", got, DefaultLevel)
	}
}

func TestParseFormat_RoundTrip(t *testing.T) {
	for name := range Formats() {
		if got := ParseFormat(name); got.String() != name {
			t.Errorf("ParseFormat(%q) = %v", name, got)
		}
	}

	if got := ParseFormat("xml"); got != DefaultFormat {
		t.Errorf("ParseFormat(unknown) = %v, want %v", got, DefaultFormat)
	}
}

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithLevel(tt.level)(config{})

			if result.level != tt.level {
				t.Errorf("expected level %v, got %v", tt.level, result.level)
			}
		})
	}
}

func TestConfig_WithCaller_SetsCaller(t *testing.T) {
	tests := []struct {
		name   string
		enable bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithCaller(tt.enable)(config{})

			if result.caller != tt.enable {
				t.Errorf("expected caller %v, got %v", tt.enable, result.caller)
			}
		})
	}
}

func TestConfig_WithFormat_SetsFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"json", FormatJSON},
		{"text", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithFormat(tt.format)(config{})

			if result.format != tt.format {
				t.Errorf("expected format %v, got %v", tt.format, result.format)
			}
		})
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name        string
		layout      string
		contains    []string
		notContains []string
	}{
		{
			name:        "rfc3339 named layout",
			layout:      "RFC3339",
			contains:    []string{"2023-10-15T14:30:45Z"},
			notContains: []string{".123", ".456", ".789"},
		},
		{
			name:     "rfc3339 nano named layout",
			layout:   "RFC3339Nano",
			contains: []string{"2023-10-15T14:30:45.123456789Z"},
		},
		{
			name:   "custom layout used verbatim",
			layout: "   2006-01-02 15:04:05.000Z07:00",
			contains: []string{
				"   2023-10-15 14:30:45.123Z",
			},
		},
		{
			name:     "unrecognized name is a custom layout",
			layout:   "UNKNOWN_FORMAT",
			contains: []string{"UNKNOWN_FORMAT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})
			result := c.formatTime(now)

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected %q to contain %q", result, s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(result, s) {
					t.Errorf("expected %q not to contain %q", result, s)
				}
			}
		})
	}
}

func TestConfig_formatTime_EmptyLayout_DisablesTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"whitespace only", "   \t  "},
		{"named none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.value)(config{})

			if result := c.formatTime(now); result != "" {
				t.Errorf("expected empty timestamp for layout %q, got %q",
					tt.value, result)
			}
		})
	}
}

func BenchmarkConfig_formatTime_SecondResolution(b *testing.B) {
	c := WithTimeLayout("RFC3339")(config{})
	testTime := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.formatTime(testTime)
	}
}

func BenchmarkConfig_formatTime_NanosecondResolution(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	testTime := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.formatTime(testTime)
	}
}
