package util

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorRoundTrip(t *testing.T) {
	in := []float32{0, 1, -2.5, 320, math32.Inf(1), 1e-7}
	out, err := DecodeTensor(EncodeTensor(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = DecodeTensor([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestLoadDirectoryTensorFiles(t *testing.T) {
	dir := t.TempDir()
	for _, frame := range []int{10, 2, 33} {
		name := filepath.Join(dir, fmt.Sprintf("frame-%d.bin", frame))
		require.NoError(t, os.WriteFile(name, EncodeTensor([]float32{float32(frame)}), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.bin"), 0o700))

	tensors, err := LoadDirectoryTensorFiles(dir)
	require.NoError(t, err)
	require.Len(t, tensors, 3)

	for i, frame := range []int{2, 10, 33} {
		assert.Equal(t, frame, tensors[i].Frame)
		assert.Equal(t, []float32{float32(frame)}, tensors[i].Data)
	}
}

func TestLoadDirectoryTensorFiles_BadName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-x.bin"), EncodeTensor([]float32{1}), 0o600))

	_, err := LoadDirectoryTensorFiles(dir)
	assert.ErrorContains(t, err, "no frame number")

	negative := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(negative, "frame--3.bin"), EncodeTensor([]float32{1}), 0o600))
	_, err = LoadDirectoryTensorFiles(negative)
	assert.ErrorContains(t, err, "negative frame number")

	_, err = LoadDirectoryTensorFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
