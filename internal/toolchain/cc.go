package toolchain

import (
	"os/exec"
)

// TODO: zig c++
var (
	commonCCompilers   = []string{"clang", "gcc", "icx", "icc", "tcc"}
	commonCxxCompilers = []string{"clang++", "g++", "c++", "icpx", "icpc"}
)

// FindCompiler picks a C or C++ compiler: CXX/CC from the environment first, then the
// first common compiler found on PATH. An empty string means nothing was found.
func FindCompiler(needCxx bool, lookup LookupFunc) string {
	cc, _ := lookup("CC")
	cxx, _ := lookup("CXX")

	if needCxx && cxx != "" {
		return cxx
	}
	if !needCxx && cc != "" {
		return cc
	}

	var compilersToTry []string
	if needCxx {
		compilersToTry = commonCxxCompilers
	} else {
		compilersToTry = commonCCompilers
	}

	for _, compiler := range compilersToTry {
		path, err := exec.LookPath(compiler)
		if err == nil {
			return path
		}
	}

	return ""
}
