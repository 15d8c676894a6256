package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadDir loads the CUE package in dir and compiles it.
func LoadDir(dir string) (*Graph, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("graph directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", formatCUEError(inst.Err))
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}
	return CompileValue(value)
}

// CompileString compiles a single CUE source. filename is used in error
// positions only.
func CompileString(filename, src string) (*Graph, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(filename))
	return CompileValue(value)
}
