// clingwrapper bdist_wheel
package cmd

import (
	"os"

	"github.com/cppyy-build/clingwrapper/internal/dist"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/platform"
	"github.com/spf13/cobra"
)

var (
	wheelDistDir     string
	wheelKeepTemp    bool
	wheelReleaseFile string
)

var wheelCmd = &cobra.Command{
	Use:   "bdist_wheel",
	Short: "Create a wheel (only on the manylinux build image)",
	Long: `Create a wheel tagged py2.py3-none-<platform>. Wheels are only produced on the
manylinux1 build image (CentOS 5.11); anywhere else this is a no-op.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b := loadBuilder()

		opts := dist.WheelOptions{
			DistDir:     wheelDistDir,
			KeepTemp:    wheelKeepTemp,
			ReleaseFile: wheelReleaseFile,
			Progress:    os.Stdout,
		}
		dist.FinalizeWheel(&opts)

		wheel, err := dist.RunWheel(b, opts, b.Build)
		if err != nil {
			msg.Fatal("%v", err)
		}
		if wheel != "" {
			msg.Info("created %s", wheel)
		}
	},
}

func init() {
	// clingwrapper bdist_wheel subcommand
	rootCmd.AddCommand(wheelCmd)
	addBuildFlags(wheelCmd)
	wheelCmd.Flags().StringVarP(&wheelDistDir, "dist-dir", "d", "", "Directory to put the wheel in (default: dist)")
	wheelCmd.Flags().BoolVarP(&wheelKeepTemp, "keep-temp", "k", false, "Keep the staging directory")
	wheelCmd.Flags().StringVar(&wheelReleaseFile, "release-file", platform.ReleaseFile, "Release file used to detect the manylinux image")
	wheelCmd.Flags().MarkHidden("release-file")
}
