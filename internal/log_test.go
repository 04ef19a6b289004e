package internal

import "testing"

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"WARN", LogLevelWarn},
		{"INFO", LogLevelInfo},
		{"DEBUG", LogLevelDebug},
		{"", LogLevelInfo},
		{"VERBOSE", LogLevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogLevelOrdering(t *testing.T) {
	if !(LogLevelError < LogLevelWarn && LogLevelWarn < LogLevelInfo && LogLevelInfo < LogLevelDebug) {
		t.Error("log levels must order from least to most verbose")
	}
}

func TestNewDefaultLoggerReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	if NewDefaultLogger().level != LogLevelError {
		t.Error("expected LOG_LEVEL=ERROR to yield an error-only logger")
	}
}
