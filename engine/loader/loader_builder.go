package loader

import "os"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkerCount is an option builder that sets the number of decode
// workers. Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithWorkerCount(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 1 {
			l.workers = n
		}
	}
}

// readFile loads a source file from disk.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
