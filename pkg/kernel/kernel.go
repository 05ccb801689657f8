// Package kernel defines the flat triangle mesh handed to persistence and
// the Exporter interface that file backends (sdfx STL, ...) implement.
// Keeping exporters behind this interface allows swapping backends without
// touching the shape builder or the pipeline.
package kernel

// Exporter writes a mesh to a file.
type Exporter interface {
	Export(path string, m *Mesh) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(path string, m *Mesh) error

// Export calls f.
func (f ExporterFunc) Export(path string, m *Mesh) error { return f(path, m) }
