package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorBounds     = errors.New("accessor exceeds buffer bounds")
)

// uriResolver fetches a resource referenced by a relative URI inside a glTF document.
type uriResolver func(uri string) ([]byte, error)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	resolve        uriResolver
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser defines the interface for parsing glTF/GLB bytes.
// It handles JSON deserialization, buffer loading, and typed accessor reads.
type gltfParser interface {
	// Parse parses a glTF JSON or GLB binary document.
	//
	// Parameters:
	//   - data: the encoded document
	//   - isGLB: true if the data is in GLB format
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(data []byte, isGLB bool) error

	// Document returns the parsed glTF document, or nil if Parse has not succeeded.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// Resolve fetches an external resource relative to the document.
	//
	// Parameters:
	//   - uri: the relative URI
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: error if the resource cannot be fetched
	Resolve(uri string) ([]byte, error)

	// ReadAccessorData reads the tightly packed bytes of an accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: the raw data
	//   - error: error if reading fails
	ReadAccessorData(accessorIndex int) ([]byte, error)

	// ReadBufferView reads the raw bytes of a buffer view, as used by embedded images.
	//
	// Parameters:
	//   - bufferViewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: a copy of the buffer view bytes
	//   - error: error if reading fails
	ReadBufferView(bufferViewIndex int) ([]byte, error)

	// ReadVec2Accessor reads an accessor as vec2 float data.
	ReadVec2Accessor(accessorIndex int) ([][2]float32, error)

	// ReadVec3Accessor reads an accessor as vec3 float data.
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ReadVec4Accessor reads an accessor as vec4 float data.
	ReadVec4Accessor(accessorIndex int) ([][4]float32, error)

	// ReadIndicesAccessor reads an accessor as index data.
	// Handles UNSIGNED_BYTE, UNSIGNED_SHORT, and UNSIGNED_INT component types.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data (converted to uint32)
	//   - error: error if reading fails
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser. External buffer and image URIs are fetched with resolve,
// which may be nil when the document is known to be self-contained.
//
// Parameters:
//   - resolve: the resolver for relative URIs
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser(resolve uriResolver) gltfParser {
	return &gltfParserImpl{resolve: resolve}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Resolve(uri string) ([]byte, error) {
	if p.resolve == nil {
		return nil, fmt.Errorf("no resolver for external resource %q", uri)
	}
	return p.resolve(uri)
}

func (p *gltfParserImpl) Parse(data []byte, isGLB bool) error {
	if isGLB || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

// parseGLTF parses a glTF JSON file.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// parseGLB parses a GLB binary file.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	var binData []byte

	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return fmt.Errorf("chunk length %d exceeds remaining %d bytes", chunkHeader.ChunkLength, r.Len())
		}
		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseGLTF(jsonData)
}

// loadBuffers loads all buffer data (from URIs, embedded data, or GLB binary chunk).
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, _, err := gltfDecodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		default:
			data, err := p.Resolve(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: failed to load %q: %w", i, buf.URI, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}

	return nil
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) ReadAccessorData(accessorIndex int) ([]byte, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &p.document.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return nil, errors.New("sparse accessors not supported")
	}
	if acc.BufferView == nil {
		return nil, errors.New("accessor has no bufferView")
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := &p.document.Buffers[bv.Buffer]

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 || acc.Count < 0 {
		return nil, fmt.Errorf("accessor %d has unsupported layout %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	bufferOffset := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		last := bufferOffset + (acc.Count-1)*stride + elementSize
		if bufferOffset < 0 || last > len(buf.Data) || last > bv.ByteOffset+bv.ByteLength {
			return nil, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorBounds)
		}
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		srcOffset := bufferOffset + i*stride
		dstOffset := i * elementSize
		copy(result[dstOffset:dstOffset+elementSize], buf.Data[srcOffset:srcOffset+elementSize])
	}

	return result, nil
}

func (p *gltfParserImpl) ReadBufferView(bufferViewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}

	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	buf := &doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf.Data) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d bufSize=%d", bv.ByteOffset, bv.ByteLength, len(buf.Data))
	}

	data := make([]byte, bv.ByteLength)
	copy(data, buf.Data[bv.ByteOffset:end])
	return data, nil
}

func (p *gltfParserImpl) ReadVec2Accessor(accessorIndex int) ([][2]float32, error) {
	return readFloatAccessor[[2]float32](p, accessorIndex, gltfAccessorTypeVec2)
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	return readFloatAccessor[[3]float32](p, accessorIndex, gltfAccessorTypeVec3)
}

func (p *gltfParserImpl) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	return readFloatAccessor[[4]float32](p, accessorIndex, gltfAccessorTypeVec4)
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range result {
			result[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}

	return result, nil
}

// --- Helper Functions ---

// accessor returns the accessor at index after a range check.
func (p *gltfParserImpl) accessor(index int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return &p.document.Accessors[index], nil
}

// readFloatAccessor decodes a FLOAT accessor of the given element type into fixed-size arrays.
func readFloatAccessor[T any](p *gltfParserImpl, accessorIndex int, accessorType string) ([]T, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not %s FLOAT: type=%s, componentType=%d", accessorType, acc.Type, acc.ComponentType)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

// gltfDecodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
func gltfDecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", errInvalidBufferURI
	}
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	if !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, strings.TrimSuffix(header, ";base64"), nil
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
