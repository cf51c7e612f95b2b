// Package toolchain decides which Cling installation the wrapper is built against
// and queries it for compiler configuration.
package toolchain

import (
	"fmt"
	"slices"
)

// Mode selects how the backend configuration tool is reached.
type Mode int

const (
	// ModeAuto probes the environment.
	ModeAuto Mode = iota
	// ModeSystem uses a locally installed ROOT/Cling (root-config on PATH).
	ModeSystem
	// ModeBundled uses the cppyy-cling package, which is then declared as a requirement.
	ModeBundled
)

var modeNames = map[Mode]string{
	ModeAuto:    "auto",
	ModeSystem:  "system",
	ModeBundled: "bundled",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown toolchain mode %q", s)
}

const DefaultEnvVar = "ROOTSYS"

// Settings is the [toolchain] section of Clingwrap.toml. Empty fields take the defaults below.
type Settings struct {
	EnvVar          string   `toml:"env"`
	SystemQuery     []string `toml:"system_query"`
	BundledQuery    []string `toml:"bundled_query"`
	BundledRequires []string `toml:"bundled_requires"`
	SystemPackages  []string `toml:"system_packages"`
}

func DefaultSettings() Settings {
	return Settings{
		EnvVar:          DefaultEnvVar,
		SystemQuery:     []string{"root-config"},
		BundledQuery:    []string{"python", "-m", "cppyy_backend._cling_config"},
		BundledRequires: []string{"cppyy-cling>6.14.2.1"},
		SystemPackages:  []string{"cppyy_backend"},
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.EnvVar == "" {
		s.EnvVar = def.EnvVar
	}
	if len(s.SystemQuery) == 0 {
		s.SystemQuery = def.SystemQuery
	}
	if len(s.BundledQuery) == 0 {
		s.BundledQuery = def.BundledQuery
	}
	if s.BundledRequires == nil {
		s.BundledRequires = def.BundledRequires
	}
	if s.SystemPackages == nil {
		s.SystemPackages = def.SystemPackages
	}
	return s
}

// Toolchain is the result of probing. It is resolved once per process and passed down.
type Toolchain struct {
	Mode Mode
	// Root is the value of the toolchain variable in system mode.
	Root string
	// Query is the command prefix; a flag such as --incdir is appended to it.
	Query []string
	// Requires lists the runtime requirements the package declares.
	Requires []string
	// Packages lists the Python packages this project ships itself.
	Packages []string
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Probe resolves the toolchain. A forced mode skips the environment check; ModeAuto
// picks ModeSystem when the settings' variable is present and ModeBundled otherwise.
func Probe(s Settings, forced Mode, lookup LookupFunc) *Toolchain {
	s = s.withDefaults()

	root, present := lookup(s.EnvVar)
	mode := forced
	if mode == ModeAuto {
		mode = ModeBundled
		if present {
			mode = ModeSystem
		}
	}

	if mode == ModeSystem {
		return &Toolchain{
			Mode:     ModeSystem,
			Root:     root,
			Query:    slices.Clone(s.SystemQuery),
			Requires: []string{},
			Packages: slices.Clone(s.SystemPackages),
		}
	}
	return &Toolchain{
		Mode:     ModeBundled,
		Query:    slices.Clone(s.BundledQuery),
		Requires: slices.Clone(s.BundledRequires),
		Packages: []string{},
	}
}
