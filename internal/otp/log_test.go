package otp

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastLinesMissingFile(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "missing.log"))

	lines, err := l.LastLines(50)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLastLinesTruncatesToNewest(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "otp.log"))
	for i := 1; i <= 60; i++ {
		require.NoError(t, l.Append(fmt.Sprintf("OTP for user%d@example.com: 123456", i)))
	}

	lines, err := l.LastLines(50)
	require.NoError(t, err)
	require.Len(t, lines, 50)

	// oldest first within the kept tail: entries 11..60
	assert.Contains(t, lines[0], "user11@example.com")
	assert.Contains(t, lines[49], "user60@example.com")
}

func TestLastLinesFormat(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), "otp.log"))
	require.NoError(t, l.Append("OTP for tech@example.com: 654321"))

	lines, err := l.LastLines(50)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - OTP for tech@example\.com: 654321$`, lines[0])
}
