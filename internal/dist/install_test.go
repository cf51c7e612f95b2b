package dist

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallBeforeBuildFails(t *testing.T) {
	captureMsg(t)
	p := newTestProject(t)

	_, err := Install(p, InstallOptions{InstallLib: filepath.Join(t.TempDir(), "site-packages")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSetup))
	assert.Contains(t, err.Error(), "failed to find build dir")
}

func TestInstallWithoutDestination(t *testing.T) {
	p := newTestProject(t)
	p.fakeBuild(t)

	_, err := Install(p, InstallOptions{})
	assert.ErrorIs(t, err, ErrSetup)
}

func TestInstallCopiesBuildTree(t *testing.T) {
	captureMsg(t)
	p := newTestProject(t)
	p.fakeBuild(t)
	writeFile(t, filepath.Join(p.layout.Lib, "cppyy_backend", "__init__.py"), "")

	site := filepath.Join(t.TempDir(), "site-packages")
	var progress bytes.Buffer
	outputs, err := Install(p, InstallOptions{InstallLib: site, Progress: &progress})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(site, "cppyy_backend", "lib", "libcppyy_backend.so"))
	assert.FileExists(t, filepath.Join(site, "cppyy_backend", "__init__.py"))
	assert.FileExists(t, filepath.Join(site, "cppyy_backend-1.4.3-py3.egg-info", "PKG-INFO"))
	assert.FileExists(t, filepath.Join(EggInfoDir(p), "requires.txt"))

	assert.Contains(t, outputs, "cppyy_backend/lib/libcppyy_backend.so")
	assert.Contains(t, outputs, "cppyy_backend-1.4.3-py3.egg-info/PKG-INFO")
	assert.NotEmpty(t, progress.String())
}

func TestInstallPrefersBdistDir(t *testing.T) {
	captureMsg(t)
	p := newTestProject(t)
	p.fakeBuild(t)

	site := filepath.Join(t.TempDir(), "site-packages")
	bdist := filepath.Join(t.TempDir(), "bdist")
	opts := InstallOptions{InstallLib: site, BdistDir: bdist}
	assert.Equal(t, bdist, opts.InstallPath())

	outputs, err := Install(p, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"cppyy_backend/lib/libcppyy_backend.so"}, outputs)
	assert.FileExists(t, filepath.Join(bdist, "cppyy_backend", "lib", "libcppyy_backend.so"))
	_, err = os.Stat(site)
	assert.True(t, os.IsNotExist(err))
}
