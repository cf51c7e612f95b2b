package dist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cppyy-build/clingwrapper/internal/fsutil"
	"github.com/cppyy-build/clingwrapper/internal/msg"
)

// ErrSetup reports a packaging step run out of order, e.g. install before build.
var ErrSetup = errors.New("setup error")

type InstallOptions struct {
	// InstallLib is the library directory of a regular install (site-packages).
	InstallLib string
	// BdistDir is the staging directory of a binary distribution. When set it wins
	// over InstallLib and the egg-info metadata is left to the distribution command.
	BdistDir string
	// Progress receives a progress bar while the build tree is copied.
	Progress io.Writer
}

// InstallPath is the directory the build tree is copied into.
func (o InstallOptions) InstallPath() string {
	if o.BdistDir != "" {
		return o.BdistDir
	}
	return o.InstallLib
}

// Install runs the standard install (package metadata) and then copies the whole
// build lib into the install path. It returns the installed files relative to that path.
// A missing build lib means nothing was built yet and fails with ErrSetup.
func Install(p Project, opts InstallOptions) ([]string, error) {
	installPath := opts.InstallPath()
	if installPath == "" {
		return nil, fmt.Errorf("%w: no install directory given", ErrSetup)
	}

	outputs, err := installMetadata(p, installPath, opts.BdistDir != "")
	if err != nil {
		return nil, err
	}

	msg.Info("now installing %s", p.Config().Package.Name)
	builddir := p.Layout().Lib
	if stat, err := os.Stat(builddir); err != nil || !stat.IsDir() {
		return nil, fmt.Errorf("%w: failed to find build dir %s", ErrSetup, builddir)
	}

	msg.Info("copying installation to: %s ...", installPath)
	copied, err := fsutil.CopyTree(builddir, installPath, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", builddir, err)
	}
	outputs = append(outputs, copied...)

	msg.Info("install finished")
	return outputs, nil
}

// installMetadata is the standard part of install: egg_info, then the egg-info
// directory copied next to the installed packages.
func installMetadata(p Project, installPath string, bdist bool) ([]string, error) {
	eggInfo, err := WriteEggInfo(p)
	if err != nil {
		return nil, err
	}
	if bdist {
		return nil, nil
	}

	cfg := p.Config()
	name := fmt.Sprintf("%s-%s-py%s.egg-info", cfg.DistName(), cfg.Package.Version, cfg.Build.Python)
	copied, err := fsutil.CopyTree(eggInfo, filepath.Join(installPath, name), nil)
	if err != nil {
		return nil, err
	}
	outputs := make([]string, len(copied))
	for i, f := range copied {
		outputs[i] = name + "/" + f
	}
	return outputs, nil
}
