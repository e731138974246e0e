// pre_processor.go implements the WGSL include pre-processor. Shader sources reference the
// GPU structs defined next to their Go mirrors with a single-line comment:
//
//	//@oxy:include lighting
//
// The line is replaced by the registered struct source so the WGSL and Go layouts have a
// single definition.
package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
)

// includePrefix marks an include directive inside a WGSL comment line.
const includePrefix = "@oxy:include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]string
	included []string
}

// PreProcessor replaces include directives in WGSL source with registered struct sources.
type PreProcessor interface {
	// Process expands every include directive in source. Each struct is emitted at most once;
	// repeated includes of the same name are dropped.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if a directive is malformed or names an unknown struct
	Process(source string) (string, error)

	// Included returns the struct names expanded by the last call to Process, in source order.
	//
	// Returns:
	//   - []string: the included names
	Included() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's GPU structs registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]string{
			"camera":   camera.GPUCameraUniformSource,
			"vertex":   model.GPUVertexSource,
			"model":    model.GPUModelDataSource,
			"material": material.GPUMaterialSource,
			"lighting": light.GPULightingSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		name, ok, err := parseInclude(line)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		if !ok {
			out = append(out, line)
			continue
		}
		src, known := p.registry[name]
		if !known {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if slices.Contains(p.included, name) {
			continue
		}
		p.included = append(p.included, name)
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Included() []string {
	return p.included
}

// parseInclude recognizes an include directive on a comment line.
func parseInclude(line string) (string, bool, error) {
	trimmed := strings.TrimSpace(line)
	comment, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return "", false, nil
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(comment), includePrefix)
	if !ok {
		return "", false, nil
	}
	args := strings.Fields(rest)
	if len(args) != 1 {
		return "", false, fmt.Errorf("include requires exactly one argument")
	}
	return args[0], true, nil
}
