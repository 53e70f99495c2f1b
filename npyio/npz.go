package npyio

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// WriteNPZ writes each matrix to its own .npy entry of a zip archive, as
// numpy.savez does. Entries are written in order of name.
func WriteNPZ(w io.Writer, arrays map[string]mat.Matrix) error {
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	z := zip.NewWriter(w)
	for _, name := range names {
		entry, err := z.Create(name + ".npy")
		if err != nil {
			return err
		}

		if err := WriteMatrix(entry, arrays[name]); err != nil {
			return errors.Wrap(err, name)
		}
	}

	return z.Close()
}

// MakeNPZ writes the given matrices to a new .npz file.
func MakeNPZ(output string, arrays map[string]mat.Matrix) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	b := bufio.NewWriter(f)
	if err := WriteNPZ(b, arrays); err != nil {
		return err
	}

	if err := b.Flush(); err != nil {
		return err
	}

	return f.Close()
}

// ReadNPZ reads every .npy entry of a zip archive, keyed by the entry
// name without its extension.
func ReadNPZ(r io.ReaderAt, size int64) (map[string]*Array, error) {
	z, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Array, len(z.File))
	for _, f := range z.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}

		a, err := readEntry(f)
		if err != nil {
			return nil, errors.Wrap(err, f.Name)
		}
		result[strings.TrimSuffix(f.Name, ".npy")] = a
	}

	return result, nil
}

func readEntry(f *zip.File) (*Array, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Read(rc)
}

// LoadNPZ reads every array in the named .npz file.
func LoadNPZ(filename string) (map[string]*Array, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return ReadNPZ(f, info.Size())
}
