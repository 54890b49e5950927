package core

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLogWrappersRenderKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	getLogger().SetOutput(&buf)
	defer getLogger().SetOutput(os.Stderr)
	SetLogLevel("debug")
	defer SetLogLevel("info")

	LogInfo("model loaded", "path", "hero.glb", "bones", 42)

	out := buf.String()
	if !strings.Contains(out, "model loaded") {
		t.Fatalf("message missing from output: %q", out)
	}
	for _, want := range []string{"path=hero.glb", "bones=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "%!") {
		t.Errorf("output contains printf formatting artifacts: %q", out)
	}

	buf.Reset()
	LogDebug("blend started", "from", "idle", "to", "run")
	if out := buf.String(); !strings.Contains(out, "from=idle") || !strings.Contains(out, "to=run") {
		t.Errorf("debug output missing key-value pairs: %q", out)
	}
}

func TestSetLogLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	getLogger().SetOutput(&buf)
	defer getLogger().SetOutput(os.Stderr)

	SetLogLevel("warn")
	defer SetLogLevel("info")
	LogInfo("below threshold")
	if buf.Len() != 0 {
		t.Errorf("info message emitted at warn level: %q", buf.String())
	}

	LogWarn("at threshold", "k", "v")
	if !strings.Contains(buf.String(), "at threshold") {
		t.Errorf("warn message not emitted at warn level")
	}

	SetLogLevel("bogus") // unknown names leave the level untouched
	buf.Reset()
	LogInfo("still below threshold")
	if buf.Len() != 0 {
		t.Errorf("unknown level name changed the filter: %q", buf.String())
	}
}
