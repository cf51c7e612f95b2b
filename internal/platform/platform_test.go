package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	cases := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "linux-x86_64"},
		{"linux", "arm64", "linux-aarch64"},
		{"linux", "386", "linux-i686"},
		{"linux", "riscv64", "linux-riscv64"},
		{"darwin", "amd64", "macosx-10.9-x86_64"},
		{"darwin", "arm64", "macosx-11.0-arm64"},
		{"windows", "amd64", "win-amd64"},
		{"windows", "386", "win32"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, name(c.goos, c.goarch), "%s/%s", c.goos, c.goarch)
	}
	assert.NotEmpty(t, Name())
}

func TestWheelTag(t *testing.T) {
	assert.Equal(t, "linux_x86_64", WheelTag("linux-x86_64"))
	assert.Equal(t, "macosx_10_9_x86_64", WheelTag("macosx-10.9-x86_64"))
}

func writeRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redhat-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsManylinux(t *testing.T) {
	assert.True(t, IsManylinux(writeRelease(t, "CentOS release 5.11 (Final)\n")))
	assert.True(t, IsManylinux(writeRelease(t, "first line\nCentOS release 5.11 (Final)")))
	assert.False(t, IsManylinux(writeRelease(t, "CentOS Linux release 7.9.2009 (Core)\n")))
	assert.False(t, IsManylinux(writeRelease(t, "")))
	assert.False(t, IsManylinux(filepath.Join(t.TempDir(), "missing")))
	assert.False(t, IsManylinux(t.TempDir()), "a directory is unreadable as a release file")
}

func TestNewLayout(t *testing.T) {
	l := NewLayout("/src", "linux-x86_64", "3.11")
	assert.Equal(t, filepath.Join("/src", "build"), l.Base)
	assert.Equal(t, filepath.Join("/src", "build", "temp.linux-x86_64-3.11"), l.Temp)
	assert.Equal(t, filepath.Join("/src", "build", "lib.linux-x86_64-3.11"), l.Lib)
	assert.Equal(t, filepath.Join("/src", "build", "bdist.linux-x86_64"), l.BdistBase)

	l = NewLayout("/src", "linux-x86_64", "")
	assert.Equal(t, filepath.Join("/src", "build", "lib.linux-x86_64"), l.Lib)
}
