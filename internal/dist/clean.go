package dist

import (
	"os"

	"github.com/cppyy-build/clingwrapper/internal/fsutil"
	"github.com/cppyy-build/clingwrapper/internal/msg"
)

type CleanOptions struct {
	// All also removes dist/, the egg-info directory and the build lib.
	All    bool
	DryRun bool
}

// Clean removes build output. Directories that are already gone only produce a warning.
func Clean(p Project, opts CleanOptions) error {
	if opts.All {
		for _, dir := range []string{DistDir(p), EggInfoDir(p)} {
			if err := cleanDir(dir, opts.DryRun, true); err != nil {
				return err
			}
		}
	}

	// standard clean
	layout := p.Layout()
	if err := cleanDir(layout.Temp, opts.DryRun, false); err != nil {
		return err
	}
	if opts.All {
		for _, dir := range []string{layout.Lib, layout.BdistBase} {
			if err := cleanDir(dir, opts.DryRun, true); err != nil {
				return err
			}
		}
	}

	if !opts.DryRun {
		// only succeeds when nothing else is left in there
		if err := os.Remove(layout.Base); err == nil {
			msg.Info("removing '%s'", layout.Base)
		}
	}
	return nil
}

func cleanDir(dir string, dryRun, warnMissing bool) error {
	if fsutil.Exists(dir) {
		return removeTree(dir, dryRun)
	}
	if warnMissing {
		msg.Warn("'%s' does not exist -- can't clean it", dir)
	}
	return nil
}
