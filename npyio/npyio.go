// Package npyio reads and writes dense arrays in NumPy's .npy format and
// bundles of them in .npz archives.
//
// Encoding and decoding of single arrays is delegated to
// github.com/sbinet/npyio. Arrays are read as float64 whatever their
// stored type (f4, f8, i4, i8) and are always written as f8.
package npyio

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ErrUnsupported is returned for valid .npy data this package cannot decode.
var ErrUnsupported = errors.New("unsupported npy data")

// Array is an n-dimensional array in C (row-major) order.
type Array struct {
	Shape []int
	Data  []float64
}

// Matrix returns the array as a matrix. One-dimensional arrays become a
// single row.
func (a *Array) Matrix() (*mat.Dense, error) {
	if len(a.Data) == 0 {
		return nil, errors.Wrapf(ErrUnsupported, "cannot convert empty array with shape %v to a matrix", a.Shape)
	}

	switch len(a.Shape) {
	case 1:
		return mat.NewDense(1, a.Shape[0], a.Data), nil
	case 2:
		return mat.NewDense(a.Shape[0], a.Shape[1], a.Data), nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "cannot convert %d-dimensional array to a matrix", len(a.Shape))
	}
}

// WriteMatrix writes m as a two-dimensional f8 array.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	return npyio.Write(w, mat.DenseCopyOf(m))
}

// WriteVector writes v as a one-dimensional f8 array.
func WriteVector(w io.Writer, v []float64) error {
	return npyio.Write(w, v)
}

// Read reads a single array.
func Read(r io.Reader) (*Array, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	data, err := readFloats(npy)
	if err != nil {
		return nil, err
	}

	shape := append([]int(nil), npy.Header.Descr.Shape...)
	if n := numElements(shape); n != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, got %d", shape, n, len(data))
	}

	if npy.Header.Descr.Fortran {
		data = fromFortranOrder(data, shape)
	}

	return &Array{Shape: shape, Data: data}, nil
}

// readFloats reads the array data in its stored type and converts it.
func readFloats(npy *npyio.Reader) ([]float64, error) {
	switch dtype := npy.Header.Descr.Type; dtype {
	case "<f8":
		var data []float64
		err := npy.Read(&data)
		return data, err
	case "<f4":
		var data []float32
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return convert(len(data), func(i int) float64 { return float64(data[i]) }), nil
	case "<i8":
		var data []int64
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return convert(len(data), func(i int) float64 { return float64(data[i]) }), nil
	case "<i4":
		var data []int32
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return convert(len(data), func(i int) float64 { return float64(data[i]) }), nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "dtype %q", dtype)
	}
}

func convert(n int, at func(i int) float64) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = at(i)
	}
	return result
}

// ReadMatrix reads a single array as a matrix.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	a, err := Read(r)
	if err != nil {
		return nil, err
	}

	return a.Matrix()
}

// ReadMatrixFile reads the matrix stored in the named .npy file.
func ReadMatrixFile(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadMatrix(f)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}

	return m, nil
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// fromFortranOrder converts column-major data to row-major.
func fromFortranOrder(data []float64, shape []int) []float64 {
	if len(shape) < 2 {
		return data
	}

	result := make([]float64, len(data))
	index := make([]int, len(shape))
	for i := range data {
		// i is the column-major offset of index; the first axis varies fastest.
		offset := 0
		for d := 0; d < len(shape); d++ {
			offset = offset*shape[d] + index[d]
		}
		result[offset] = data[i]

		for d := 0; d < len(shape); d++ {
			index[d]++
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
		}
	}

	return result
}
