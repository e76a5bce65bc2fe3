// Package util - Loading of raw tensor dumps.
package util

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TensorExt is the extension of raw tensor dumps.
const TensorExt = ".bin"

// TensorFile represents a raw little-endian float32 tensor dump.
type TensorFile struct {
	// Path is the path to the tensor file.
	Path string
	// Data is the decoded tensor.
	Data []float32
	// Frame is the frame number of the tensor file.
	Frame int
}

// LoadTensorFile reads a little-endian float32 tensor dump.
//
// Arguments:
// - path: Path to the dump.
//
// Returns:
// - []float32: The tensor values.
// - error: Error if the file cannot be read or is not a whole number of float32 values.
func LoadTensorFile(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTensor(raw)
}

// DecodeTensor decodes little-endian float32 values.
func DecodeTensor(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, errors.Errorf("tensor dump has %d bytes, not a multiple of 4", len(raw))
	}
	data := make([]float32, len(raw)/4)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return data, nil
}

// EncodeTensor encodes values as little-endian float32.
func EncodeTensor(data []float32) []byte {
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return raw
}

// LoadDirectoryTensorFiles reads all frame-N.bin tensor dumps from a directory.
//
// Arguments:
// - dir: Directory path containing tensor dumps.
//
// Returns:
// - []TensorFile: The dumps ordered by frame number.
// - error: Error if loading fails or a file name carries no non-negative frame number.
func LoadDirectoryTensorFiles(dir string) ([]TensorFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tensors []TensorFile
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != TensorExt {
			continue
		}

		path := filepath.Join(dir, file.Name())
		frame, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(file.Name(), "frame-"), TensorExt))
		if err != nil {
			return nil, errors.Wrapf(err, "tensor file %s has no frame number", path)
		}
		if frame < 0 {
			return nil, errors.Errorf("tensor file %s has negative frame number %d", path, frame)
		}
		data, err := LoadTensorFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor file %s", path)
		}
		tensors = append(tensors, TensorFile{
			Path:  path,
			Data:  data,
			Frame: frame,
		})
	}

	sort.Slice(tensors, func(i, j int) bool {
		return tensors[i].Frame < tensors[j].Frame
	})

	return tensors, nil
}
