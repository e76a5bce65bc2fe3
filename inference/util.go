package inference

import (
	"os"
	"runtime"
)

// SharedLibEnv overrides the onnxruntime shared library location.
const SharedLibEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// DefaultSharedLibPath returns the onnxruntime shared library for this platform.
func DefaultSharedLibPath() string {
	if path := os.Getenv(SharedLibEnv); path != "" {
		return path
	}
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.1.23.0.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}
