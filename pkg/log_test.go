package pkg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelRoundTrip(t *testing.T) {
	orig := GetLogLevel()
	defer SetLogLevel(orig)

	SetLogLevel(logrus.DebugLevel)
	assert.Equal(t, logrus.DebugLevel, GetLogLevel())
}

func TestLogIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	orig := DefaultLogger
	defer SetLogger(orig)

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	SetLogger(logger)

	LogDebug(ComponentBus, "device enumerated", "guid", "0x0011223344556677")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "component=bus"), "output: %s", out)
	assert.True(t, strings.Contains(out, "guid"), "output: %s", out)
}

func TestLogBelowLevelSuppressed(t *testing.T) {
	var buf bytes.Buffer
	orig := DefaultLogger
	defer SetLogger(orig)

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.WarnLevel)
	SetLogger(logger)

	LogInfo(ComponentHAL, "should not appear")
	assert.Empty(t, buf.String())
}

func TestLogOddKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	orig := DefaultLogger
	defer SetLogger(orig)

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	SetLogger(logger)

	// A trailing odd value must not panic.
	LogWarn(ComponentTransfer, "odd", "key")
	assert.NotEmpty(t, buf.String())
}
