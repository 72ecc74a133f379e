package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cmdutil "github.com/akmc/akmc/pkg/cmd/util"
	"github.com/akmc/akmc/pkg/binfile"
	"github.com/akmc/akmc/pkg/capability"
	"github.com/akmc/akmc/pkg/codegen"
	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/frontend"
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
	"github.com/akmc/akmc/pkg/optimize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] module.akm.js",
	Short: "compile an AKM source module into a binary .akm package.",
	Long:  `Compile a single AKM source module into the AKM v2 binary container.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Help()
		}

		return runCompile(cmd, args[0])
	},
}

func runCompile(cmd *cobra.Command, filename string) error {
	if cmdutil.GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	ex, diags := frontend.Parse(filename, string(source))
	if err := diagsToErr(diags); err != nil {
		return err
	}

	prog, diags := ir.Build(ex)
	if err := diagsToErr(diags); err != nil {
		return err
	}

	prog = capability.Infer(prog)

	if capsFlag := cmdutil.GetString(cmd, "caps"); capsFlag != "" {
		mask, err := parseCapabilities(capsFlag)
		if err != nil {
			return err
		}

		prog.Module.Capabilities |= mask
	}

	if cmdutil.GetFlag(cmd, "debug") {
		prog.Module.Flags |= isa.FlagDebug
	}

	cfg := optimize.Levels[0]
	if cmdutil.GetFlag(cmd, "optimize") {
		cfg = optimize.DefaultLevel
	}

	prog = optimize.Run(prog, cfg)

	if cmdutil.GetFlag(cmd, "emit-ir") {
		printIR(prog)
	}

	gen, diags := codegen.Generate(prog)
	if err := diagsToErr(diags); err != nil {
		return err
	}

	artifact, diags := binfile.Build(prog, gen)
	if err := diagsToErr(diags); err != nil {
		return err
	}

	if cmdutil.GetFlag(cmd, "dry-run") {
		fmt.Printf("%s: %d bytes (dry run, nothing written)\n", filename, len(artifact))
		return nil
	}

	output := cmdutil.GetString(cmd, "output")
	if output == "" {
		output = defaultOutputPath(filename)
	}

	return os.WriteFile(output, artifact, 0644)
}

// diagsToErr logs every warning at log.Warn and joins the fatal diagnostics,
// if any, into a single error for Cobra's RunE contract.
func diagsToErr(diags []diag.Diagnostic) error {
	fatal, warnings := diag.Split(diags)

	for _, w := range warnings {
		log.Warn(w.Error())
	}

	joined := make([]error, len(fatal))
	for i, e := range fatal {
		joined[i] = e
	}

	return errors.Join(joined...)
}

// defaultOutputPath strips a trailing ".akm.js" or ".js" extension and
// appends ".akm".
func defaultOutputPath(filename string) string {
	base := filename

	switch {
	case strings.HasSuffix(base, ".akm.js"):
		base = strings.TrimSuffix(base, ".akm.js")
	case strings.HasSuffix(base, ".js"):
		base = strings.TrimSuffix(base, ".js")
	default:
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return base + ".akm"
}

// parseCapabilities accepts either a "0x..."-prefixed hex mask or a
// comma-separated list of capability names (-c/--caps).
func parseCapabilities(spec string) (uint32, error) {
	if strings.HasPrefix(spec, "0x") || strings.HasPrefix(spec, "0X") {
		v, err := strconv.ParseUint(spec[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid capability mask %q: %w", spec, err)
		}

		return uint32(v), nil
	}

	var mask uint32

	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		c, ok := isa.ByCapabilityName(name)
		if !ok {
			return 0, fmt.Errorf("unknown capability %q", name)
		}

		mask |= c.Bit()
	}

	return mask, nil
}

func printIR(prog *ir.Program) {
	fmt.Printf("module %s v%s\n", prog.Module.Name, prog.Module.Version)

	for _, fn := range prog.Functions {
		fmt.Printf("fn %s(%s) {\n", fn.Name, strings.Join(fn.Parameters, ", "))

		for pc, insn := range fn.Instructions {
			fmt.Printf("  [%d]\t%s\t%s\n", pc, insn.Op.Mnemonic(), irOperand(insn))
		}

		fmt.Println("}")
	}
}

func irOperand(insn ir.Instruction) string {
	switch {
	case insn.Method != "":
		return fmt.Sprintf("%s/%d", insn.Method, insn.Argc)
	case insn.Func != "":
		return fmt.Sprintf("%s/%d", insn.Func, insn.Argc)
	case insn.Name != "":
		return insn.Name
	case insn.Label != "":
		return insn.Label
	case insn.Value.Kind == ir.LitInt:
		return strconv.Itoa(int(insn.Value.Int))
	case insn.Value.Kind == ir.LitString:
		return strconv.Quote(insn.Value.Str)
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "specify output file (default: derived from the input filename)")
	compileCmd.Flags().BoolP("debug", "d", false, "set the DEBUG header flag")
	compileCmd.Flags().BoolP("optimize", "O", false, "enable the optimizer pipeline")
	compileCmd.Flags().StringP("caps", "c", "", "additional capabilities: 0x<hex> or name[,name...]")
	compileCmd.Flags().Bool("dry-run", false, "compile without writing the output file")
	compileCmd.Flags().Bool("emit-ir", false, "print the lowered IR before code generation")
}
