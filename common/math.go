package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// TransformPoint multiplies a 4x4 column-major matrix with the homogeneous
// point (x, y, z, w) and returns the resulting vector.
//
// Parameters:
//   - m: source matrix (16 elements, column-major)
//   - x, y, z, w: point components
//
// Returns:
//   - [4]float32: the transformed point
func TransformPoint(m []float32, x, y, z, w float32) [4]float32 {
	return [4]float32{
		m[0]*x + m[4]*y + m[8]*z + m[12]*w,
		m[1]*x + m[5]*y + m[9]*z + m[13]*w,
		m[2]*x + m[6]*y + m[10]*z + m[14]*w,
		m[3]*x + m[7]*y + m[11]*z + m[15]*w,
	}
}

// CartesianToDevice builds the viewport matrix that maps cartesian pixel
// coordinates (origin at the viewport center, y up) to normalized device
// coordinates. This is the set-0 global transform shared by every pipeline
// variant and is rebuilt whenever the surface is resized.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - width: viewport width in pixels (must be > 0)
//   - height: viewport height in pixels (must be > 0)
func CartesianToDevice(out []float32, width, height float32) {
	Identity(out)
	out[0] = 2.0 / width
	out[5] = 2.0 / height
}

// View2D builds the camera view matrix scale(zoom) * rotZ(rotation) *
// translate(-x, y, 0) in column-major order. Rotation is in degrees.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY: camera position in world space
//   - zoom: uniform scale factor applied after rotation
//   - rotation: camera roll in degrees, counter-clockwise
func View2D(out []float32, posX, posY, zoom, rotation float32) {
	rad := rotation * math32.Pi / 180.0
	c := math32.Cos(rad)
	s := math32.Sin(rad)

	// S * R, column-major.
	Identity(out)
	out[0] = zoom * c
	out[1] = zoom * s
	out[4] = zoom * -s
	out[5] = zoom * c

	// Translation column is (S * R) * (-x, y, 0).
	tx, ty := -posX, posY
	out[12] = out[0]*tx + out[4]*ty
	out[13] = out[1]*tx + out[5]*ty
}
