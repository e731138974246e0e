package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor extracts material and base color texture data from a parsed glTF document.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, including its base color texture bytes.
	// A texture that cannot be fetched is dropped and the material keeps its color factor.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - common.Material: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (common.Material, error)

	// ExtractAllMaterials extracts all materials from the document, in document order.
	//
	// Returns:
	//   - []common.Material: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (common.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return common.Material{}, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return common.Material{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	result := common.Material{
		Name:        mat.Name,
		BaseColor:   [4]float32{1, 1, 1, 1},
		Metallic:    1.0,
		Roughness:   1.0,
		DoubleSided: mat.DoubleSided,
	}

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			result.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			result.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			result.Roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			tex, err := e.loadTexture(pbr.BaseColorTexture.Index)
			if err != nil {
				return common.Material{}, fmt.Errorf("material %q: base color texture: %w", mat.Name, err)
			}
			result.BaseColorTexture = tex
		}
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	materials := make([]common.Material, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}
	return materials, nil
}

// loadTexture resolves a glTF texture index into encoded image bytes.
// Images embedded in a buffer view or a data URI are always read; external images go through the
// parser's resolver and are skipped when unavailable.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*common.Texture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	source := tex.Source
	if ext := tex.Extensions.WebP; ext != nil && ext.Source != nil {
		source = ext.Source
	}
	if source == nil {
		return nil, nil
	}

	imageIndex := *source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}
	img := &doc.Images[imageIndex]

	result := &common.Texture{
		Name:     img.Name,
		MimeType: img.MimeType,
	}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		result.MimeType = common.Coalesce(result.MimeType, mimeType)
	case img.URI != "":
		data, err := e.parser.Resolve(img.URI)
		if err != nil {
			return nil, nil
		}
		result.Data = data
	default:
		return nil, nil
	}

	return result, nil
}
