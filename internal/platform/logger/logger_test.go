package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Fatalf("expected json")
	}
	if ParseFormat("pretty") != FormatText {
		t.Fatalf("expected text fallback")
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatText} {
		l, err := New(Options{Level: zapcore.WarnLevel, Format: f, App: "cat-shelter"})
		if err != nil {
			t.Fatalf("new %s: %v", f, err)
		}
		if l.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("%s: info should be disabled at warn", f)
		}
		if !l.Core().Enabled(zapcore.ErrorLevel) {
			t.Fatalf("%s: error should be enabled at warn", f)
		}
	}
}
