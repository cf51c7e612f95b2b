package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigTool writes a fake root-config that answers --incdir and --auxcflags.
func writeConfigTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "root-config")
	script := `#!/bin/sh
case "$1" in
  --incdir) echo "  /opt/root/include  " ;;
  --auxcflags) echo " -std=c++17   -pthread " ;;
  *) echo "unknown option $1" >&2; exit 2 ;;
esac
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestQueryTrimsOutput(t *testing.T) {
	tc := &Toolchain{Query: []string{writeConfigTool(t)}}

	inc, err := tc.IncludeDir()
	require.NoError(t, err)
	assert.Equal(t, "/opt/root/include", inc)

	flags, err := tc.AuxCflags()
	require.NoError(t, err)
	assert.Equal(t, []string{"-std=c++17", "-pthread"}, flags)
}

func TestQueryPrefixArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	tc := &Toolchain{Query: []string{"sh", "-c", `echo "$0"`}}

	out, err := tc.Run(FlagIncDir)
	require.NoError(t, err)
	assert.Equal(t, "--incdir", out)
}

func TestQueryAbnormalExit(t *testing.T) {
	tc := &Toolchain{Query: []string{writeConfigTool(t)}}

	_, err := tc.Run(Flag("--libs"))
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Contains(t, qerr.Stderr, "unknown option --libs")
	assert.Contains(t, err.Error(), "--libs")
}

func TestQueryCannotStart(t *testing.T) {
	tc := &Toolchain{Query: []string{filepath.Join(t.TempDir(), "no-such-config")}}

	_, err := tc.AuxCflags()
	var qerr *QueryError
	assert.True(t, errors.As(err, &qerr))
}

func TestQueryEmptyPrefix(t *testing.T) {
	_, err := (&Toolchain{}).IncludeDir()
	assert.Error(t, err)
}

func TestFindCompilerPrefersEnvironment(t *testing.T) {
	env := envOf(map[string]string{"CC": "my-cc", "CXX": "my-c++"})
	assert.Equal(t, "my-c++", FindCompiler(true, env))
	assert.Equal(t, "my-cc", FindCompiler(false, env))
}
