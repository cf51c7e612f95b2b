package dist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cppyy-build/clingwrapper/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataString(t *testing.T) {
	p := newTestProject(t)
	meta, err := NewMetadata(p)
	require.NoError(t, err)

	want := `Metadata-Version: 2.1
Name: cppyy-backend
Version: 1.4.3
Summary: C/C++ wrapper for Cling
Home-page: http://pypy.org
Author: PyPy Developers
License: LBNL BSD
Classifier: Operating System :: POSIX :: Linux
Classifier: Programming Language :: C++
Requires-Dist: cppyy-cling>6.14.2.1
`
	assert.Equal(t, want, meta.String())
}

func TestMetadataSystemToolchainHasNoRequirement(t *testing.T) {
	p := newTestProject(t)
	p.tc = &toolchain.Toolchain{Mode: toolchain.ModeSystem, Requires: []string{}, Packages: []string{"cppyy_backend"}}

	meta, err := NewMetadata(p)
	require.NoError(t, err)
	assert.NotContains(t, meta.String(), "Requires-Dist")
	assert.Equal(t, []string{"cppyy_backend"}, meta.TopLevel())
}

func TestMetadataReadme(t *testing.T) {
	p := newTestProject(t)
	p.cfg.Package.Readme = "README.md"

	_, err := NewMetadata(p)
	assert.ErrorContains(t, err, "long description")

	writeFile(t, filepath.Join(p.dir, "README.md"), "# cppyy-backend")
	meta, err := NewMetadata(p)
	require.NoError(t, err)
	assert.Contains(t, meta.String(), "Description-Content-Type: text/markdown\n\n# cppyy-backend\n")
}

func TestWriteEggInfo(t *testing.T) {
	captureMsg(t)
	p := newTestProject(t)

	dir, err := WriteEggInfo(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.dir, "python", "cppyy_backend.egg-info"), dir)

	requires, err := os.ReadFile(filepath.Join(dir, "requires.txt"))
	require.NoError(t, err)
	assert.Equal(t, "cppyy-cling>6.14.2.1\n", string(requires))

	sources, err := os.ReadFile(filepath.Join(dir, "SOURCES.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Clingwrap.toml\nsrc/clingwrapper.cxx\n", string(sources))

	assert.FileExists(t, filepath.Join(dir, "PKG-INFO"))
	assert.FileExists(t, filepath.Join(dir, "not-zip-safe"))
}
