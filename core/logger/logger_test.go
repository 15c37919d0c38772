package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	coreconfig "github.com/m3rciful/vaultbot/core/config"
)

func TestContextValues(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(context.Background(), "r"), 5, 6, 7)
	ctx = WithHandler(ctx, "cmd.start")

	assert.Equal(t, "r", RIDFrom(ctx))
	assert.Equal(t, UpdateMeta{UpdateID: 5, UserID: 6, ChatID: 7}, MetaFrom(ctx))
	assert.Equal(t, 5, UpdateIDFrom(ctx))
	assert.Equal(t, int64(6), UserIDFrom(ctx))
	assert.Equal(t, int64(7), ChatIDFrom(ctx))
	assert.Equal(t, "cmd.start", HandlerFrom(ctx))

	assert.Same(t, L, FromContext(ctx))
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, FromContext(WithLogger(ctx, custom)))
	assert.Equal(t, ctx, WithLogger(ctx, nil))
	assert.Zero(t, MetaFrom(context.Background()))
}

func TestRIDHelpers(t *testing.T) {
	assert.Equal(t, "36:72:1", BuildRID(36, 72, 1))
	assert.Equal(t, "10.20.1", CompactRID("36:72:1"))
	assert.Equal(t, "-1.0.z", CompactRID("-1:0:35"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:3", CompactRID("1:x:3"))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "abcd", SanitizeLimit("ab\x00c\u200bdef", 4))
	assert.Equal(t, "a\nb\tc", SanitizeLimit("a\nb\tc", 10))
	assert.Equal(t, "", SanitizeLimit("abc", 0))
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(2, 5)
	var got []bool
	for range 10 {
		got = append(got, s.Allow())
	}
	assert.Equal(t, []bool{true, true, false, false, false, true, true, false, false, false}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())
	s.Set(9, 3)
	for range 5 {
		assert.True(t, s.Allow())
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/50":   {1, 50},
		" 3 / 4": {3, 4},
		"20":     {1, 20},
		"0":      {0, 0},
		"":       {0, 0},
		"a/b":    {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatioSpec(in)
		assert.Equal(t, want, [2]int{num, den}, in)
	}
}

func TestAsyncWriter(t *testing.T) {
	defer goleak.VerifyNone(t)

	var a, b bytes.Buffer
	w := newAsyncWriter([]io.Writer{&a, nil, &b}, 8)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Write([]byte("line\n")))
		}()
	}
	wg.Wait()
	require.NoError(t, w.Flush())
	assert.Equal(t, 20, bytes.Count(a.Bytes(), []byte("\n")))
	assert.Equal(t, a.String(), b.String())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write([]byte("late\n")), errWriterClosed)
	assert.ErrorIs(t, w.Flush(), errWriterClosed)
}

func TestSettingsFrom(t *testing.T) {
	def := settingsFrom(nil)
	assert.Equal(t, formatJSON, def.format)
	assert.Equal(t, slog.LevelInfo, def.level)
	assert.Equal(t, "prod", def.profile)

	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "warning",
		Profile:     "Dev",
		KeysOrder:   "event, ,level",
		DebugSample: "1/2",
	}}
	s := settingsFrom(cfg)
	assert.Equal(t, formatKV, s.format)
	assert.Equal(t, slog.LevelWarn, s.level)
	assert.Equal(t, []string{"event", "level"}, s.keyOrder)
	assert.Equal(t, "1/2", s.sample)
	assert.Equal(t, "dev", s.profile)

	cfg.Logging.Format = "json"
	assert.Equal(t, formatJSON, settingsFrom(cfg).format)
}

func TestComponent(t *testing.T) {
	assert.Same(t, L, Component(" "))
	assert.NotNil(t, Component("db"))
}

func TestSummarizeStrings(t *testing.T) {
	s, cut := SummarizeStrings([]string{"a", "b", "c"}, 2)
	assert.Equal(t, "a, b", s)
	assert.True(t, cut)
	s, cut = SummarizeStrings([]string{"a"}, 2)
	assert.Equal(t, "a", s)
	assert.False(t, cut)
}
