// clingwrapper install
package cmd

import (
	"os"
	"path/filepath"

	"github.com/cppyy-build/clingwrapper/internal/dist"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/spf13/cobra"
)

var (
	installPrefix    string
	installRoot      string
	installLib       string
	installSkipBuild bool
)

// sitePackages is <prefix>/lib/python<version>/site-packages.
func sitePackages(prefix, pyver string) string {
	return filepath.Join(prefix, "lib", "python"+pyver, "site-packages")
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Build and install the package and libcppyy_backend.so",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b := loadBuilder()

		if !installSkipBuild {
			if err := b.Build(); err != nil {
				msg.Fatal("%v", err)
			}
		}

		lib := installLib
		if lib == "" {
			pyver := flagPython
			if pyver == "" {
				pyver = b.Config().Build.Python
			}
			lib = sitePackages(installPrefix, pyver)
		}
		if installRoot != "" {
			lib = filepath.Join(installRoot, lib)
		}

		outputs, err := dist.Install(b, dist.InstallOptions{InstallLib: lib, Progress: os.Stdout})
		if err != nil {
			msg.Fatal("%v", err)
		}
		msg.Info("installed %d files into %s", len(outputs), lib)
	},
}

func init() {
	// clingwrapper install subcommand
	rootCmd.AddCommand(installCmd)
	addBuildFlags(installCmd)
	installCmd.Flags().StringVar(&installPrefix, "prefix", "/usr/local", "Installation prefix")
	installCmd.Flags().StringVar(&installRoot, "root", "", "Install everything relative to this alternate root directory")
	installCmd.Flags().StringVar(&installLib, "install-lib", "", "Installation directory for modules (default: <prefix>/lib/python<version>/site-packages)")
	installCmd.Flags().BoolVar(&installSkipBuild, "skip-build", false, "Skip rebuilding everything (for testing/debugging)")
}
