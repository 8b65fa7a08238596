package dataset

// Codec persists a dataset to, and restores it from, a serialized blob.
// Serialization formats are external collaborators; this package defines
// only the boundary.
type Codec interface {
	Save(ds *Dataset, path string) error
	Load(path string) (*Dataset, error)
}

// FrameBridge converts between a Dataset and an external tabular frame
// representation. The frame type is opaque to this package.
type FrameBridge interface {
	Export(ds *Dataset) (any, error)
	Import(frame any) (*Dataset, error)
}
