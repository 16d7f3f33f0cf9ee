package fsutil

// FileStore provides an interface for reading a document corpus
type FileStore interface {
	// ReadFile reads a file and returns its contents
	ReadFile(path string) ([]byte, error)

	// ListFiles returns paths of regular files under a directory whose
	// extension matches one of the given extensions (e.g. ".txt"). An empty
	// extension list matches every file.
	ListFiles(path string, extensions ...string) ([]string, error)
}
