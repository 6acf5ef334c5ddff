package native

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// shaderCacheSize bounds the number of prepared programs kept per adapter.
const shaderCacheSize = 32

// shaderKey identifies one prepared program.
type shaderKey struct {
	source   string
	vertex   string
	fragment string
	spirv    bool
}

// validateWGSL parses, lowers and validates WGSL source and checks that the
// vertex and fragment entry points exist with the right stages.
func validateWGSL(source, vertexEntry, fragmentEntry string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderValidation, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderValidation, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderValidation, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Message
		}
		return fmt.Errorf("%w: %s", ErrShaderValidation, strings.Join(msgs, "; "))
	}

	return errors.Join(
		requireEntryPoint(module, vertexEntry, ir.StageVertex),
		requireEntryPoint(module, fragmentEntry, ir.StageFragment),
	)
}

func requireEntryPoint(module *ir.Module, name string, stage ir.ShaderStage) error {
	for _, ep := range module.EntryPoints {
		if ep.Name != name {
			continue
		}
		if ep.Stage != stage {
			return fmt.Errorf("%w: entry point %q has the wrong stage", ErrShaderValidation, name)
		}
		return nil
	}
	return fmt.Errorf("%w: entry point %q not found", ErrShaderValidation, name)
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderValidation, err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// prepareShader validates a program and returns its HAL source for the
// adapter's mode. Identical programs are validated and compiled once.
func (a *HALAdapter) prepareShader(desc *gpucore.ShaderStagesDesc) (hal.ShaderSource, error) {
	a.mu.Lock()
	spirv := a.spirv
	a.mu.Unlock()

	key := shaderKey{source: desc.Source, vertex: desc.VertexEntry, fragment: desc.FragmentEntry, spirv: spirv}
	return a.shaderCache.GetOrCreate(key, func() (hal.ShaderSource, error) {
		if err := validateWGSL(desc.Source, desc.VertexEntry, desc.FragmentEntry); err != nil {
			return hal.ShaderSource{}, err
		}
		if !spirv {
			return hal.ShaderSource{WGSL: desc.Source}, nil
		}
		words, err := compileSPIRV(desc.Source)
		if err != nil {
			return hal.ShaderSource{}, err
		}
		slogger().Debug("native: compiled SPIR-V", "label", desc.Label, "words", len(words))
		return hal.ShaderSource{SPIRV: words}, nil
	})
}

// ShaderCacheStats returns the hit and miss counts of the prepared-program
// cache.
func (a *HALAdapter) ShaderCacheStats() (hits, misses uint64) {
	s := a.shaderCache.Stats()
	return s.Hits, s.Misses
}

// SetSPIRV makes CreateShaderStages hand precompiled SPIR-V to the HAL
// instead of WGSL source.
func (a *HALAdapter) SetSPIRV(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spirv = on
}
