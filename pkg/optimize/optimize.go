// Package optimize implements the four-pass IR optimizer:
// dead-code elimination, constant folding, peephole collapsing, and
// string-table deduplication, applied in that fixed order.
package optimize

import "github.com/akmc/akmc/pkg/ir"

// Config controls which of the four passes run. Grounded on the prior
// OptimisationConfig/OPTIMISATION_LEVELS shape (pkg/mir/optimiser.go): a
// small struct of named levels rather than a bare bool, so a future level
// can add passes without changing the CLI surface.
type Config struct {
	DeadCode         bool
	ConstantFold     bool
	Peephole         bool
	StringTableDedup bool
}

// Levels provides the precanned -O0/-O1 configurations the CLI exposes.
var Levels = []Config{
	// Level 0: nothing enabled.
	{},
	// Level 1: every pass enabled.
	{DeadCode: true, ConstantFold: true, Peephole: true, StringTableDedup: true},
}

// DefaultLevel is the configuration used when the CLI's -O flag is given;
// without it the CLI runs Levels[0].
var DefaultLevel = Levels[1]

// Run applies the enabled passes to prog in place and also returns it, for
// call-site chaining.
func Run(prog *ir.Program, cfg Config) *ir.Program {
	for i := range prog.Functions {
		fn := &prog.Functions[i]

		if cfg.DeadCode {
			eliminateDeadCode(fn)
		}

		if cfg.ConstantFold {
			foldConstants(fn)
		}

		if cfg.Peephole {
			runPeephole(fn)
		}
	}

	if cfg.StringTableDedup {
		prog.Strings.Dedup()
	}

	return prog
}
