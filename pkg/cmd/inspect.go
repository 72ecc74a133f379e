package cmd

import (
	"errors"
	"fmt"
	"os"

	cmdutil "github.com/akmc/akmc/pkg/cmd/util"
	"github.com/akmc/akmc/pkg/inspector"
	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/term"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] module.akm",
	Short: "inspect an AKM v2 binary package.",
	Long:  `Decode an AKM v2 binary package's header and report its fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Help()
		}

		return runInspect(cmd, args[0])
	},
}

func runInspect(cmd *cobra.Command, filename string) error {
	if cmdutil.GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return err
	}
	defer data.Unmap()

	report, diags := inspector.Inspect(data)
	if report == nil {
		return diagsToErr(diags)
	}

	if cmdutil.GetFlag(cmd, "json") {
		out, err := inspector.RenderJSON(report)
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	}

	if cmdutil.GetFlag(cmd, "info") {
		isTTY := term.IsTerminal(int(os.Stdout.Fd()))
		fmt.Print(inspector.Render(report))

		if isTTY {
			fmt.Println()
		}
	}

	if err := diagsToErr(diags); err != nil {
		return err
	}

	if !report.ContentChecksumValid || !report.HeaderChecksumValid {
		return errors.New("checksum validation failed")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolP("info", "i", true, "print the decoded header report")
	inspectCmd.Flags().Bool("json", false, "render the report as JSON")
}
