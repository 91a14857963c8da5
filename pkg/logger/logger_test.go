package logger

import "testing"

func TestInitLevels(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"DEBUG":   "debug",
		" warn ":  "warn",
		"warning": "warn",
		"error":   "error",
		"fatal":   "fatal",
		"":        "info",
		"bogus":   "info",
	}
	for in, want := range cases {
		Init(in)
		if got := LevelString(); got != want {
			t.Fatalf("Init(%q): got level %q want %q", in, got, want)
		}
	}
	// restore default for other tests
	Init("info")
}

func TestSuppressedBelowLevel(t *testing.T) {
	// Debugf below info level must not panic and must be a no-op.
	Init("info")
	Debugf("should be suppressed %d", 1)
	Infof("visible %s", "message")
}
