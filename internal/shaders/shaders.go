// Package shaders holds the WGSL sources for both triangle variants and
// turns them into HAL shader modules.
package shaders

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Entry points shared by every variant.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

//go:embed triangle.wgsl
var triangleSource string

//go:embed triangle_pos.wgsl
var trianglePosSource string

// ErrEmptySource is returned when a shader has no WGSL text.
var ErrEmptySource = errors.New("shaders: empty WGSL source")

// Source is a named WGSL module.
type Source struct {
	Label string
	WGSL  string
}

// Flat draws the triangle with a constant color.
var Flat = Source{Label: "triangle_flat", WGSL: triangleSource}

// Position colors each fragment from its clip-space position.
var Position = Source{Label: "triangle_position", WGSL: trianglePosSource}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	if wgsl == "" {
		return nil, ErrEmptySource
	}

	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// CreateModule compiles src and creates a shader module on device.
func CreateModule(device hal.Device, src Source) (hal.ShaderModule, error) {
	words, err := CompileSPIRV(src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Label, err)
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", src.Label, err)
	}
	return module, nil
}
