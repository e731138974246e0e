// gltf_types.go contains the subset of the glTF 2.0 JSON schema the viewer decodes.
// Skins, animations and morph targets are not read: the viewer displays static geometry.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// --- glTF Root Structure ---

// gltfDocument represents the root of a glTF JSON document.
type gltfDocument struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       *int             `json:"scene,omitempty"`
	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Textures    []gltfTexture    `json:"textures,omitempty"`
	Images      []gltfImage      `json:"images,omitempty"`
}

// gltfAsset contains metadata about the glTF asset.
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.0").
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// --- Scene Graph ---

// gltfScene is a set of root nodes.
type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode is a node in the node hierarchy.
// A node carries either Matrix or any of Translation, Rotation and Scale.
type gltfNode struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"` // quaternion (x, y, z, w)
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// --- Mesh Data ---

// gltfMesh is a set of primitives to be rendered.
type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

// gltfPrimitive defines geometry for rendering.
type gltfPrimitive struct {
	// Attributes maps a semantic (POSITION, NORMAL, TEXCOORD_0, COLOR_0) to an accessor index.
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	// Mode is the primitive topology; 4 (TRIANGLES) is the default.
	Mode *int `json:"mode,omitempty"`
}

const gltfPrimitiveModeTriangles = 4

// --- Buffer Data ---

// gltfAccessor defines how to interpret buffer data.
type gltfAccessor struct {
	BufferView    *int                `json:"bufferView,omitempty"`
	ByteOffset    int                 `json:"byteOffset,omitempty"`
	ComponentType int                 `json:"componentType"`
	Normalized    bool                `json:"normalized,omitempty"`
	Count         int                 `json:"count"`
	Type          string              `json:"type"`
	Sparse        *gltfAccessorSparse `json:"sparse,omitempty"`
}

const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat4   = "MAT4"
)

// gltfAccessorSparse is only detected, never applied.
type gltfAccessorSparse struct {
	Count int `json:"count"`
}

// gltfBufferView is a slice of a buffer.
type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

// gltfBuffer is a raw binary data container. Data is filled in by the parser.
type gltfBuffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Data       []byte `json:"-"`
}

// --- Materials & Textures ---

type gltfMaterial struct {
	Name                 string                    `json:"name,omitempty"`
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                      `json:"doubleSided,omitempty"`
}

type gltfPbrMetallicRoughness struct {
	BaseColorFactor  *[4]float32      `json:"baseColorFactor,omitempty"`
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32         `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32         `json:"roughnessFactor,omitempty"`
}

type gltfTextureInfo struct {
	Index int `json:"index"`
}

type gltfTexture struct {
	Source     *int                  `json:"source,omitempty"`
	Extensions gltfTextureExtensions `json:"extensions,omitempty"`
}

// gltfTextureExtensions holds the texture extensions that redirect the image source.
type gltfTextureExtensions struct {
	WebP *gltfTextureSource `json:"EXT_texture_webp,omitempty"`
}

type gltfTextureSource struct {
	Source *int `json:"source,omitempty"`
}

type gltfImage struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// --- GLB Container ---

type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

const (
	gltfGLBMagic     = 0x46546C67 // "glTF"
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0"
)
