package shader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	vertexEntryRegex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)
	vertexInputRegex   = regexp.MustCompile(`(?s)struct\s+VertexInput\s*\{(.*?)\}`)
	locationFieldRegex = regexp.MustCompile(`@location\((\d+)\)\s*\w+\s*:\s*([\w<>]+)`)
)

// vertexFormats maps WGSL vertex attribute types to their wgpu format and byte size.
var vertexFormats = map[string]struct {
	format wgpu.VertexFormat
	size   uint64
}{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
}

// shader is the implementation of the Shader interface.
type shader struct {
	key               string
	source            string
	vertexEntry       string
	fragmentEntries   []string
	vertexLayout      wgpu.VertexBufferLayout
	includedStructs   []string
	preProcessor      PreProcessor
	requireVertexData bool
}

// Shader is a pre-processed WGSL module holding one vertex entry point and one or more
// fragment entry points. The vertex buffer layout is derived from the VertexInput struct.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoints returns the names of every @fragment function in source order.
	//
	// Returns:
	//   - []string: the entry point names
	FragmentEntryPoints() []string

	// HasFragmentEntryPoint reports whether the module declares the named @fragment function.
	//
	// Parameters:
	//   - name: the entry point name
	//
	// Returns:
	//   - bool: true when declared
	HasFragmentEntryPoint(name string) bool

	// VertexLayout returns the tightly packed vertex buffer layout described by VertexInput.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the layout
	VertexLayout() wgpu.VertexBufferLayout

	// Included returns the GPU structs injected by the pre-processor.
	//
	// Returns:
	//   - []string: the include names
	Included() []string
}

var _ Shader = &shader{}

// NewShader pre-processes and inspects a WGSL module.
//
// Parameters:
//   - key: the shader identifier
//   - source: the raw WGSL source, which may contain include directives
//   - options: functional options
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or the module has no vertex entry point
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:               key,
		preProcessor:      NewPreProcessor(),
		requireVertexData: true,
	}
	for _, opt := range options {
		opt(s)
	}

	expanded, err := s.preProcessor.Process(source)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-process shader %q: %w", key, err)
	}
	s.source = expanded
	s.includedStructs = append([]string(nil), s.preProcessor.Included()...)

	cleaned := stripLineComments(expanded)
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		s.vertexEntry = m[1]
	}
	if s.vertexEntry == "" {
		return nil, fmt.Errorf("shader %q has no @vertex entry point", key)
	}
	for _, m := range fragmentEntryRegex.FindAllStringSubmatch(cleaned, -1) {
		s.fragmentEntries = append(s.fragmentEntries, m[1])
	}

	layout, err := parseVertexLayout(cleaned)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	if s.requireVertexData && len(layout.Attributes) == 0 {
		return nil, fmt.Errorf("shader %q declares no VertexInput attributes", key)
	}
	s.vertexLayout = layout
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoints() []string {
	return s.fragmentEntries
}

func (s *shader) HasFragmentEntryPoint(name string) bool {
	for _, e := range s.fragmentEntries {
		if e == name {
			return true
		}
	}
	return false
}

func (s *shader) VertexLayout() wgpu.VertexBufferLayout {
	return s.vertexLayout
}

func (s *shader) Included() []string {
	return s.includedStructs
}

// parseVertexLayout builds a per-vertex buffer layout from the VertexInput struct, with
// attributes packed in field order.
func parseVertexLayout(source string) (wgpu.VertexBufferLayout, error) {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	block := vertexInputRegex.FindStringSubmatch(source)
	if block == nil {
		return layout, nil
	}
	var offset uint64
	for _, field := range locationFieldRegex.FindAllStringSubmatch(block[1], -1) {
		var location uint32
		if _, err := fmt.Sscanf(field[1], "%d", &location); err != nil {
			return layout, fmt.Errorf("invalid vertex location %q: %w", field[1], err)
		}
		f, ok := vertexFormats[field[2]]
		if !ok {
			return layout, fmt.Errorf("unsupported vertex attribute type %q", field[2])
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         f.format,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += f.size
	}
	layout.ArrayStride = offset
	return layout, nil
}

func stripLineComments(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
