// Package platform names the build platform the way Python packaging tools do and
// lays out the build directories derived from it.
package platform

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var machines = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"arm":     "armv7l",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
}

// Name returns the distutils-style platform name, e.g. "linux-x86_64" or "macosx-11.0-arm64".
func Name() string {
	return name(runtime.GOOS, runtime.GOARCH)
}

func name(goos, goarch string) string {
	machine, ok := machines[goarch]
	if !ok {
		machine = goarch
	}

	switch goos {
	case "darwin":
		if goarch == "arm64" {
			return "macosx-11.0-arm64"
		}
		return "macosx-10.9-" + machine
	case "windows":
		if goarch == "386" {
			return "win32"
		}
		return "win-" + goarch
	default:
		return goos + "-" + machine
	}
}

// WheelTag converts a platform name into a wheel platform tag ("linux-x86_64" -> "linux_x86_64").
func WheelTag(plat string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(plat)
}

const (
	// ReleaseFile identifies the distribution on Red Hat derived systems.
	ReleaseFile = "/etc/redhat-release"
	// ManylinuxMarker is the release line of the manylinux1 build image.
	ManylinuxMarker = "CentOS release 5.11"
)

// IsManylinux reports whether the release file at path has a line containing the
// manylinux1 marker. A missing or unreadable file means false.
func IsManylinux(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.Contains(sc.Text(), ManylinuxMarker) {
			return true
		}
	}
	return false
}

// Layout holds the build directories of a project.
type Layout struct {
	Base      string // build/
	Temp      string // build/temp.<plat>-<pyver>, objects and build state
	Lib       string // build/lib.<plat>-<pyver>, everything that gets installed
	BdistBase string // build/bdist.<plat>, wheel staging
	Plat      string
}

// NewLayout derives the build directories under basedir for the given platform and
// Python version.
func NewLayout(basedir, plat, pyver string) Layout {
	base := filepath.Join(basedir, "build")
	spec := plat
	if pyver != "" {
		spec += "-" + pyver
	}
	return Layout{
		Base:      base,
		Temp:      filepath.Join(base, "temp."+spec),
		Lib:       filepath.Join(base, "lib."+spec),
		BdistBase: filepath.Join(base, "bdist."+plat),
		Plat:      plat,
	}
}
