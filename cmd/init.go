// clingwrapper init [name], clingwrapper new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cppyy-build/clingwrapper/internal/config"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Fprintf(msg.Output, "%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "clingwrapper"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// initIn initializes a wrapper project in an existing directory. Existing files are kept.
func initIn(dir, name string) {
	pkg := strings.NewReplacer("-", "_", ".", "_").Replace(name)

	// Clingwrap.toml
	writefile(`[package]
name = "`+name+`"
version = "0.1.0"
description = "C/C++ wrapper for Cling"
readme = "README.rst"
license = "LBNL BSD"
keywords = "C++ bindings data science"
classifiers = [
    "Development Status :: 5 - Production/Stable",
    "Intended Audience :: Developers",
    "Topic :: Software Development :: Interpreters",
    "Operating System :: POSIX",
    "Operating System :: POSIX :: Linux",
    "Operating System :: MacOS :: MacOS X",
    "Programming Language :: C++",
]
package_dir = "`+config.DefaultPackageDir+`"

[toolchain]
system_packages = ["`+pkg+`"]

[extension]
name = "`+pkg+`/lib/libcppyy_backend"
sources = ["src/**.cxx"]
include_dirs = ["include"]

[extension.'target_os == "darwin"']
ldflags = ["-Wl,-rpath,@loader_path"]
`, dir, config.Filename)

	mkdir(dir, "src")
	mkdir(dir, "include")
	mkdir(dir, config.DefaultPackageDir, pkg)

	// src/clingwrapper.cxx
	writefile(`#include "capi.h"

extern "C" {

int cppyy_compile(const char* code) {
    // hand code to the interpreter here
    return code != nullptr;
}

} // extern "C"
`, dir, "src", "clingwrapper.cxx")

	// include/capi.h
	writefile(`#ifndef CPPYY_CAPI_H
#define CPPYY_CAPI_H

#ifdef __cplusplus
extern "C" {
#endif

int cppyy_compile(const char* code);

#ifdef __cplusplus
} // extern "C"
#endif

#endif
`, dir, "include", "capi.h")

	// python/<pkg>/__init__.py
	writefile(`import os

libdir = os.path.join(os.path.dirname(__file__), "lib")
`, dir, config.DefaultPackageDir, pkg, "__init__.py")

	// README.rst
	writefile(name+"\n"+strings.Repeat("=", len(name))+"\n\nC/C++ wrapper around Cling.\n", dir, "README.rst")

	// .gitignore
	writefile(`build/
dist/
*.egg-info/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Fprintf(msg.Output, "You can now do %s to build, or %s to build a wheel.\n", color.HiCyanString(programName+" -C "+dir), color.HiCyanString(programName+" bdist_wheel -C "+dir))
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new wrapper project in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0])
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new wrapper project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]))
	},
}

func init() {
	// clingwrapper init subcommand
	rootCmd.AddCommand(initCmd)

	// clingwrapper new subcommand
	rootCmd.AddCommand(newCmd)
}
