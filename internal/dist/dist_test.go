package dist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cppyy-build/clingwrapper/internal/config"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/platform"
	"github.com/cppyy-build/clingwrapper/internal/toolchain"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

type testProject struct {
	dir    string
	cfg    *config.Config
	tc     *toolchain.Toolchain
	layout platform.Layout
}

func (p *testProject) Dir() string                     { return p.dir }
func (p *testProject) Config() *config.Config          { return p.cfg }
func (p *testProject) Toolchain() *toolchain.Toolchain { return p.tc }
func (p *testProject) Layout() platform.Layout         { return p.layout }

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	dir := t.TempDir()
	return &testProject{
		dir: dir,
		cfg: &config.Config{
			Package: config.PackageSection{
				Name:        "cppyy-backend",
				Version:     "1.4.3",
				Description: "C/C++ wrapper for Cling",
				URL:         "http://pypy.org",
				Author:      "PyPy Developers",
				License:     "LBNL BSD",
				Classifiers: []string{"Operating System :: POSIX :: Linux", "Programming Language :: C++"},
				PackageDir:  "python",
			},
			Extension: config.ExtensionSection{
				Name:    config.DefaultExtensionName,
				Sources: []string{"src/clingwrapper.cxx"},
			},
			Build: config.BuildSection{Python: "3"},
		},
		tc: &toolchain.Toolchain{
			Mode:     toolchain.ModeBundled,
			Requires: []string{"cppyy-cling>6.14.2.1"},
			Packages: []string{},
		},
		layout: platform.NewLayout(dir, "linux-x86_64", "3"),
	}
}

// fakeBuild puts a library where build_ext would leave it.
func (p *testProject) fakeBuild(t *testing.T) {
	t.Helper()
	writeFile(t, filepath.Join(p.layout.Lib, "cppyy_backend", "lib", "libcppyy_backend.so"), "ELF")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func captureMsg(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old, oldNoColor := msg.Output, color.NoColor
	msg.Output, color.NoColor = &buf, true
	t.Cleanup(func() { msg.Output, color.NoColor = old, oldNoColor })
	return &buf
}
