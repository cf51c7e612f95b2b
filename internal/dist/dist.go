// Package dist implements the packaging hooks around the built extension: clean,
// egg_info, install and bdist_wheel.
package dist

import (
	"os"
	"path/filepath"

	"github.com/cppyy-build/clingwrapper/internal/config"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/platform"
	"github.com/cppyy-build/clingwrapper/internal/toolchain"
)

// Project is what the hooks need from a loaded project. *builder.Builder implements it.
type Project interface {
	Dir() string
	Config() *config.Config
	Toolchain() *toolchain.Toolchain
	Layout() platform.Layout
}

// DistDir is the default output directory of distributions.
func DistDir(p Project) string {
	return filepath.Join(p.Dir(), "dist")
}

// EggInfoDir is the package metadata directory egg_info writes next to the Python sources.
func EggInfoDir(p Project) string {
	cfg := p.Config()
	return filepath.Join(p.Dir(), cfg.Package.PackageDir, cfg.DistName()+".egg-info")
}

func removeTree(dir string, dryRun bool) error {
	msg.Info("removing '%s' (and everything under it)", dir)
	if dryRun {
		return nil
	}
	return os.RemoveAll(dir)
}
