// clingwrapper [build], clingwrapper build
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cppyy-build/clingwrapper/internal/builder"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/toolchain"
	"github.com/spf13/cobra"
)

var (
	flagDir       string
	flagPython    string
	flagToolchain EnumValue = NewEnumValue("auto", map[string]string{
		"auto":    "System toolchain when the toolchain variable ($ROOTSYS) is set, bundled otherwise",
		"system":  "Query a locally installed root-config",
		"bundled": "Query cppyy_backend from the cppyy-cling package",
	})

	flagDebug    bool
	flagForce    bool
	flagJobs     int
	flagCompiler string
)

// loadBuilder reads the environment once and resolves the project and its toolchain.
func loadBuilder() *builder.Builder {
	mode, err := toolchain.ParseMode(flagToolchain.Value())
	if err != nil {
		msg.Fatal("%v", err)
	}
	b, err := builder.NewBuilderInDirectory(flagDir, builder.Options{
		Environ:  os.Environ(),
		Mode:     mode,
		Python:   flagPython,
		Debug:    flagDebug,
		Force:    flagForce,
		Jobs:     flagJobs,
		Compiler: flagCompiler,
	})
	if err != nil {
		msg.Fatal("%v", err)
	}
	tc := b.Toolchain()
	msg.Info("using %s toolchain (%s)", tc.Mode, strings.Join(tc.Query, " "))
	return b
}

func doBuild(cmd *cobra.Command, args []string) {
	b := loadBuilder()
	if err := b.Build(); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clingwrapper",
	Short: "Build and package the cppyy backend wrapper",
	Long: `Build and package the cppyy backend wrapper.

Compiles the C++ wrapper around Cling into libcppyy_backend.so and installs or
packages it next to the cppyy_backend Python package. Without a subcommand, builds.`,
	Args: cobra.NoArgs,
	Run:  doBuild,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build everything needed to install (build_py + build_ext)",
	Args:  cobra.NoArgs,
	Run:   doBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "Project directory containing Clingwrap.toml")
	rootCmd.PersistentFlags().StringVar(&flagPython, "python", "", "Python version used in build directory names (default from [build] python)")
	rootCmd.PersistentFlags().Var(&flagToolchain, "toolchain", "Toolchain to build against, one of "+flagToolchain.HelpString())
	rootCmd.RegisterFlagCompletionFunc("toolchain", flagToolchain.CompletionFunc())
	addBuildFlags(rootCmd)

	// clingwrapper build subcommand
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagDebug, "debug", "g", false, "Compile and link with debugging information")
	cmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Rebuild everything, ignoring the build state")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Number of parallel compile jobs (default: number of CPUs)")
	cmd.Flags().StringVar(&flagCompiler, "compiler", "", "C++ compiler to use (default: $CXX or the first one found)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
