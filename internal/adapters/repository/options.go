package repository

import "io/fs"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFS reads artifacts from fsys instead of the directory given to
// NewFileStore.
func WithFS(fsys fs.FS) Option {
	return func(s *FileStore) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithManifestName overrides the manifest file name.
func WithManifestName(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.manifest = name
		}
	}
}
