package shader

import (
	"go.uber.org/zap"
)

// ProgramBuilderOption is a functional option applied to a program during construction via NewProgram.
type ProgramBuilderOption func(*program)

// WithLogger sets the logger that receives compile and link diagnostics.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - ProgramBuilderOption: a function that applies the logger option to a program
func WithLogger(logger *zap.Logger) ProgramBuilderOption {
	return func(p *program) {
		if logger != nil {
			p.logger = logger
		}
	}
}
