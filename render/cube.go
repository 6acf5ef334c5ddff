package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rhi"
)

// Cube is one animated object of the scene.
type Cube struct {
	// Position is the cube center in world space, before the camera offset.
	Position mgl32.Vec3

	// Axis is the rotation axis. It should be normalized.
	Axis mgl32.Vec3

	// Speed is the rotation speed in radians per second.
	Speed float32

	// Angle is the current rotation angle in radians.
	Angle float32

	// Color tints the cube. The built-in shader ignores it.
	Color rhi.Color
}

// DefaultCubes returns the three cubes of the demo scene.
func DefaultCubes() []Cube {
	return []Cube{
		{
			Position: mgl32.Vec3{-3, 0, 0},
			Axis:     mgl32.Vec3{0, 1, 0},
			Speed:    1.0,
			Color:    rhi.RGB(1, 0.3, 0.3),
		},
		{
			Position: mgl32.Vec3{0, 0, 0},
			Axis:     mgl32.Vec3{1, 1, 0}.Normalize(),
			Speed:    1.5,
			Color:    rhi.RGB(0.3, 1, 0.3),
		},
		{
			Position: mgl32.Vec3{3, 0, 0},
			Axis:     mgl32.Vec3{1, 0, 1}.Normalize(),
			Speed:    0.75,
			Color:    rhi.RGB(0.3, 0.3, 1),
		},
	}
}

// Vertex is one cube corner: position followed by color.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 24

// CubeIndexCount is the number of indices drawn per cube.
const CubeIndexCount = 36

// cubeVertices are the eight corners of a unit cube. The -z face is red and
// the +z face blue, each with a darker bottom edge.
var cubeVertices = [8]Vertex{
	{[3]float32{-1, 1, -1}, [3]float32{1, 0.3, 0.3}},
	{[3]float32{1, 1, -1}, [3]float32{1, 0.3, 0.3}},
	{[3]float32{-1, -1, -1}, [3]float32{0.8, 0.2, 0.2}},
	{[3]float32{1, -1, -1}, [3]float32{0.8, 0.2, 0.2}},
	{[3]float32{1, 1, 1}, [3]float32{0.3, 0.3, 1}},
	{[3]float32{-1, 1, 1}, [3]float32{0.3, 0.3, 1}},
	{[3]float32{1, -1, 1}, [3]float32{0.2, 0.2, 0.8}},
	{[3]float32{-1, -1, 1}, [3]float32{0.2, 0.2, 0.8}},
}

// cubeIndices lists two clockwise triangles per face.
var cubeIndices = [CubeIndexCount]uint16{
	0, 1, 2, 1, 3, 2, // front
	1, 4, 3, 4, 6, 3, // right
	4, 5, 6, 5, 7, 6, // back
	5, 0, 7, 0, 2, 7, // left
	5, 4, 0, 4, 1, 0, // top
	2, 3, 7, 3, 6, 7, // bottom
}

// CubeVertices returns a copy of the cube mesh vertices.
func CubeVertices() []Vertex {
	out := cubeVertices
	return out[:]
}

// CubeIndices returns a copy of the cube mesh indices.
func CubeIndices() []uint16 {
	out := cubeIndices
	return out[:]
}

func vertexBytes(vertices []Vertex) []byte {
	buf := make([]byte, 0, len(vertices)*VertexStride)
	for _, v := range vertices {
		buf = appendFloats(buf, v.Position[:]...)
		buf = appendFloats(buf, v.Color[:]...)
	}
	return buf
}

func indexBytes(indices []uint16) []byte {
	buf := make([]byte, 0, len(indices)*2)
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return buf
}

// matrixBytes packs m column-major, as WGSL mat4x4<f32> expects.
func matrixBytes(m mgl32.Mat4) []byte {
	return appendFloats(make([]byte, 0, 64), m[:]...)
}

func appendFloats(buf []byte, fs ...float32) []byte {
	for _, f := range fs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}
