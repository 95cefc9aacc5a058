// Package onnxenv owns process-wide ONNX runtime initialization. Both the
// wakeword spotter and the local embedding model create sessions; the
// runtime environment itself must be initialized exactly once.
package onnxenv

import (
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	once    sync.Once
	initErr error
)

// Ensure initializes the ONNX runtime environment exactly once per process.
// The shared library path can be overridden with ONNXRUNTIME_LIB.
func Ensure() error {
	once.Do(func() {
		if libPath := os.Getenv("ONNXRUNTIME_LIB"); libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		} else if runtime.GOOS == "darwin" {
			// Homebrew install location as a fallback on macOS.
			ort.SetSharedLibraryPath("/opt/homebrew/lib/libonnxruntime.dylib")
		}
		initErr = ort.InitializeEnvironment()
	})
	return initErr
}
