// clingwrapper clean
package cmd

import (
	"github.com/cppyy-build/clingwrapper/internal/dist"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/spf13/cobra"
)

var (
	cleanAll    bool
	cleanDryRun bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output",
	Long: `Remove the temporary build directory. With --all also remove the build lib,
wheel staging, dist/ and the egg-info directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b := loadBuilder()
		if err := dist.Clean(b, dist.CleanOptions{All: cleanAll, DryRun: cleanDryRun}); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	// clingwrapper clean subcommand
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanAll, "all", "a", false, "Remove all build output, not just temporary files")
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "Only print what would be removed")
}
