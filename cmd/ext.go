// clingwrapper build_ext, clingwrapper build_py
package cmd

import (
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/spf13/cobra"
)

var buildExtCmd = &cobra.Command{
	Use:   "build_ext",
	Short: "Compile and link libcppyy_backend.so",
	Long: `Compile the wrapper sources against the queried Cling headers and link them into
libcppyy_backend.so under the build lib directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b := loadBuilder()
		out, err := b.BuildExt()
		if err != nil {
			msg.Fatal("%v", err)
		}
		msg.Info("built %s", out)
	},
}

var buildPyCmd = &cobra.Command{
	Use:   "build_py",
	Short: "Copy the shipped Python packages into the build lib directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := loadBuilder().BuildPy(); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	// clingwrapper build_ext subcommand
	rootCmd.AddCommand(buildExtCmd)
	addBuildFlags(buildExtCmd)

	// clingwrapper build_py subcommand
	rootCmd.AddCommand(buildPyCmd)
}
