// Package cmd implements the akmc command-line interface: the compile and
// inspect subcommands built on top of the frontend-through-inspector
// pipeline.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	cmdutil "github.com/akmc/akmc/pkg/cmd/util"
	"github.com/spf13/cobra"
)

// Version is filled at link time via -ldflags; when it is empty, the
// module version from the build info is reported instead.
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "akmc",
	Short: "A compiler for AKM kernel modules.",
	Long:  "A compiler and inspector for AKM v2 kernel module binaries.",
	Run: func(cmd *cobra.Command, args []string) {
		if cmdutil.GetFlag(cmd, "version") {
			fmt.Print("akmc ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()

			return
		}

		cmd.Help() //nolint:errcheck
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
