// SPDX-License-Identifier: EPL-2.0

package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// setBuild swaps the ldflags variables for the duration of a test. Tests
// using it must not run in parallel.
func setBuild(t *testing.T, v, commit, date string) {
	t.Helper()

	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = v, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestGetInfo(t *testing.T) {
	setBuild(t, "1.2.0", "0123456789abcdef", "2026-01-02T03:04:05Z")

	info := GetInfo()
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestString(t *testing.T) {
	setBuild(t, "1.2.0", "0123456789abcdef", "2026-01-02T03:04:05Z")

	s := String()
	assert.True(t, strings.HasPrefix(s, "aafembed version 1.2.0 (commit: 01234567, built: 2026-01-02T03:04:05Z"))
	assert.Equal(t, "aafembed 1.2.0 (01234567)", Short())
}

func TestString_Dev(t *testing.T) {
	setBuild(t, "dev", "unknown", "unknown")

	assert.Equal(t, "aafembed dev", Short())
	assert.NotContains(t, String(), "commit:")
}
