package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches checks the level, caller file, message and structured fields of the next line
// in `actual`. The time and the exact line number are ignored.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, level, file, msg, fields string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	parts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	test.That(t, len(parts[0]), test.ShouldEqual, len(DefaultTimeFormatStr))
	test.That(t, parts[1], test.ShouldEqual, level)

	var rest []string
	if parts[2] == "sampler" || parts[2] == "sampler.sub" {
		rest = parts[3:]
	} else {
		rest = parts[2:]
	}
	actualFilename, _, found := strings.Cut(rest[0], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, file)
	test.That(t, rest[1], test.ShouldEqual, msg)
	if fields == "" {
		test.That(t, rest, test.ShouldHaveLength, 2)
		return
	}
	test.That(t, rest[2], test.ShouldEqual, fields)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{
		name:      "",
		level:     NewAtomicLevelAt(DEBUG),
		inUTC:     true,
		appenders: []Appender{NewWriterAppender(notStdout)},
	}

	logger.Info("info log")
	assertLogMatches(t, notStdout, "INFO", "logging/impl_test.go", "info log", "")

	logger.Infof("infof log %d", 120)
	assertLogMatches(t, notStdout, "INFO", "logging/impl_test.go", "infof log 120", "")

	logger.Debugw("debugw log", "mm", 95)
	assertLogMatches(t, notStdout, "DEBUG", "logging/impl_test.go", "debugw log", `{"mm": 95}`)

	logger.Warnw("unpaired", "key")
	assertLogMatches(t, notStdout, "WARN", "logging/impl_test.go", "unpaired", `{"key": "unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"sampler", NewAtomicLevelAt(INFO), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Debug("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Error("shown")
	assertLogMatches(t, notStdout, "ERROR", "logging/impl_test.go", "shown", "")

	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
	logger.Warn("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)
}

func TestSublogger(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"sampler", NewAtomicLevelAt(DEBUG), true, []Appender{NewWriterAppender(notStdout)}}

	sub := logger.Sublogger("sub")
	sub.Info("from sub")
	output := notStdout.String()
	test.That(t, output, test.ShouldContainSubstring, "sampler.sub")
	test.That(t, output, test.ShouldContainSubstring, "from sub")

	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("range sampler ready", "timeout", "500ms")

	entries := logs.FilterMessage("range sampler ready").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["timeout"], test.ShouldEqual, "500ms")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestFileAppender(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sampler.log")
	appender := NewFileAppender(filename, 1, 2)
	logger := &impl{"sampler", NewAtomicLevelAt(INFO), true, []Appender{appender}}

	logger.Infow("range sampler ready", "timeout", "500ms")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(filename)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "range sampler ready")
	test.That(t, string(contents), test.ShouldContainSubstring, `{"timeout": "500ms"}`)
}
