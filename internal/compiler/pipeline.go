// Package compiler wires the frontend, quadir, x86ir, regalloc and emit
// packages into the single CompileText entry point cmd/qcc calls.
package compiler

import (
	"qcc/internal/emit"
	"qcc/internal/frontend"
	"qcc/internal/quadir"
	"qcc/internal/regalloc"
	"qcc/internal/x86ir"
)

// CompileText lowers source text all the way to NASM assembly text.
func CompileText(src string) (string, error) {
	parser, err := frontend.NewParser(src)
	if err != nil {
		return "", err
	}
	cstFuncs, err := parser.ParseProgram()
	if err != nil {
		return "", err
	}

	checker := frontend.NewChecker()
	funcs, err := checker.Check(cstFuncs)
	if err != nil {
		return "", err
	}

	quadFrames, err := quadir.Build(funcs)
	if err != nil {
		return "", err
	}

	x86Frames, err := x86ir.Lower(quadFrames)
	if err != nil {
		return "", err
	}

	allocs := map[string]*regalloc.Allocation{}
	for _, f := range x86Frames {
		allocs[f.Name] = regalloc.Allocate(f)
	}

	hasMain := false
	for _, fn := range funcs {
		if fn.Name == "main" {
			hasMain = true
		}
	}

	asm := emit.New()
	return asm.Emit(x86Frames, allocs, hasMain)
}
