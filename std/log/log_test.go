package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"
)

type testTag struct{}

func (testTag) String() string { return "link-1" }

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal} {
		p, err := ParseLevel(strings.ToLower(l.String()))
		require.NoError(t, err)
		require.Equal(t, l, p)
	}
	_, err := ParseLevel("LOUD")
	require.Error(t, err)
	require.Equal(t, "UNKNOWN", Level(3).String())
}

func TestLevelYaml(t *testing.T) {
	var cfg struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: debug\n"), &cfg))
	require.Equal(t, LevelDebug, cfg.Level)
	require.Error(t, yaml.Unmarshal([]byte("level: loud\n"), &cfg))

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.Equal(t, "level: DEBUG\n", string(out))
}

func TestLoggerText(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf)

	l.Debug(testTag{}, "hidden")
	require.Empty(t, buf.String())

	l.Warn(testTag{}, "Dropped frame", "size", 10)
	line := buf.String()
	require.Contains(t, line, "level=WARN")
	require.Contains(t, line, "tag=link-1")
	require.Contains(t, line, `msg="Dropped frame"`)
	require.Contains(t, line, "size=10")

	require.Equal(t, LevelInfo, l.SetLevel(LevelTrace))
	require.True(t, l.Enabled(LevelTrace))
	buf.Reset()
	l.Trace(nil, "details")
	require.Contains(t, buf.String(), "level=TRACE")
	require.Contains(t, buf.String(), "source=")
}

func TestLoggerJson(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json")
	l.Error("face", "Send failed", "err", "closed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "ERROR", rec["level"])
	require.Equal(t, "face", rec["tag"])
	require.Equal(t, "closed", rec["err"])
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	code := 0
	prevExit := exit
	exit = func(c int) { code = c }
	defer func() { exit = prevExit }()

	prev := Default()
	SetDefault(NewText(&buf))
	defer SetDefault(prev)

	Fatal(nil, "giving up")
	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "level=FATAL")
}
