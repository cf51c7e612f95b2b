// clingwrapper egg_info, clingwrapper query
package cmd

import (
	"fmt"
	"strings"

	"github.com/cppyy-build/clingwrapper/internal/dist"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/toolchain"
	"github.com/spf13/cobra"
)

var eggInfoCmd = &cobra.Command{
	Use:   "egg_info",
	Short: "Write the package metadata directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := dist.WriteEggInfo(loadBuilder())
		if err != nil {
			msg.Fatal("%v", err)
		}
		msg.Info("wrote %s", dir)
	},
}

var queryCmd = &cobra.Command{
	Use:       "query <incdir|auxcflags>",
	Short:     "Print what the toolchain's config tool reports",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"incdir", "auxcflags"},
	Run: func(cmd *cobra.Command, args []string) {
		tc := loadBuilder().Toolchain()
		out, err := tc.Run(toolchain.Flag("--" + strings.TrimPrefix(args[0], "--")))
		if err != nil {
			msg.Fatal("%v", err)
		}
		fmt.Println(out)
	},
}

func init() {
	// clingwrapper egg_info subcommand
	rootCmd.AddCommand(eggInfoCmd)

	// clingwrapper query subcommand
	rootCmd.AddCommand(queryCmd)
}
