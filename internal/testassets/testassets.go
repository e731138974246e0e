// Package testassets builds small glTF documents and images in memory for tests.
package testassets

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/bmp"
)

const (
	glbMagic     = 0x46546C67
	glbChunkJSON = 0x4E4F534A
	glbChunkBIN  = 0x004E4942
)

// triangleBuffer returns a buffer holding three VEC3 positions followed by three uint16 indices
// padded to four bytes.
func triangleBuffer() []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, []float32{
		0, 0, 0,
		1, 0, 0,
		0, 2, 0,
	})
	_ = binary.Write(buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return buf.Bytes()
}

// triangleDocument returns a single-node glTF document drawing one red triangle.
// The node is translated by offset. bufferURI is left empty for GLB.
func triangleDocument(offset [3]float32, bufferURI string) map[string]any {
	buffer := map[string]any{"byteLength": 44}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{map[string]any{
			"name":        "triangle",
			"mesh":        0,
			"translation": offset,
		}},
		"meshes": []any{map[string]any{
			"name": "triangle",
			"primitives": []any{map[string]any{
				"attributes": map[string]int{"POSITION": 0},
				"indices":    1,
				"material":   0,
			}},
		}},
		"materials": []any{map[string]any{
			"name": "red",
			"pbrMetallicRoughness": map[string]any{
				"baseColorFactor": []float32{1, 0, 0, 1},
				"metallicFactor":  0,
				"roughnessFactor": 1,
			},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
				"min": []float32{0, 0, 0}, "max": []float32{1, 2, 0}},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"buffers": []any{buffer},
	}
}

// TriangleGLB returns a binary glTF containing one triangle spanning (0,0,0)-(1,2,0) in mesh space,
// placed by a node translated by offset.
func TriangleGLB(offset [3]float32) []byte {
	jsonChunk, _ := json.Marshal(triangleDocument(offset, ""))
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := triangleBuffer()

	out := new(bytes.Buffer)
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(out, binary.LittleEndian, []uint32{glbMagic, 2, uint32(total)})
	_ = binary.Write(out, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), glbChunkJSON})
	out.Write(jsonChunk)
	_ = binary.Write(out, binary.LittleEndian, []uint32{uint32(len(binChunk)), glbChunkBIN})
	out.Write(binChunk)
	return out.Bytes()
}

// TriangleGLTF returns a JSON glTF drawing the same triangle as TriangleGLB, with its buffer
// stored externally under bufferURI. Use TriangleBin for the buffer contents.
func TriangleGLTF(offset [3]float32, bufferURI string) []byte {
	data, _ := json.Marshal(triangleDocument(offset, bufferURI))
	return data
}

// TriangleBin returns the external buffer referenced by TriangleGLTF.
func TriangleBin() []byte {
	return triangleBuffer()
}

// TriangleEmbeddedGLTF returns a JSON glTF with the buffer embedded as a base64 data URI.
func TriangleEmbeddedGLTF(offset [3]float32) []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	return TriangleGLTF(offset, uri)
}

// SolidPNG returns a PNG of the given size filled with opaque mid gray.
func SolidPNG(width, height int) []byte {
	buf := new(bytes.Buffer)
	_ = png.Encode(buf, solid(width, height))
	return buf.Bytes()
}

// SolidBMP returns a BMP of the given size filled with opaque mid gray.
func SolidBMP(width, height int) []byte {
	buf := new(bytes.Buffer)
	_ = bmp.Encode(buf, solid(width, height))
	return buf.Bytes()
}

func solid(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})
		}
	}
	return img
}

// TexturedGLTF returns the embedded triangle with a base color texture whose core source is
// fallback (a PNG) and whose EXT_texture_webp source is webp.
func TexturedGLTF(fallback, webp []byte) []byte {
	doc := triangleDocument([3]float32{}, "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(triangleBuffer()))
	doc["extensionsUsed"] = []string{"EXT_texture_webp"}
	doc["images"] = []any{
		map[string]any{"uri": "data:image/png;base64," + base64.StdEncoding.EncodeToString(fallback)},
		map[string]any{"uri": "data:image/webp;base64," + base64.StdEncoding.EncodeToString(webp)},
	}
	doc["textures"] = []any{map[string]any{
		"source":     0,
		"extensions": map[string]any{"EXT_texture_webp": map[string]any{"source": 1}},
	}}
	doc["materials"] = []any{map[string]any{
		"name": "textured",
		"pbrMetallicRoughness": map[string]any{
			"baseColorTexture": map[string]any{"index": 0},
		},
	}}
	data, _ := json.Marshal(doc)
	return data
}
