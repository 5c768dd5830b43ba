package scene

import "path"

// SourceKind discriminates the artifact kinds that can instigate an instance.
type SourceKind uint8

const (
	// SourceFile means the instance was produced from a file or directory on
	// disk; Path holds its artifact path.
	SourceFile SourceKind = iota
	// SourceProjectNode means the instance was produced by a node in a
	// project description file rather than a dedicated artifact.
	SourceProjectNode
)

// Source records which on-disk artifact produced an instance. Instances
// created live (never loaded) have no Source.
type Source struct {
	Kind SourceKind
	// Path is the artifact path for SourceFile, or the project file path for
	// SourceProjectNode.
	Path string
}

// ArtifactName returns the file or directory name component of the source
// path. Empty for project-node sources, whose instances keep their own name
// on disk.
func (s *Source) ArtifactName() string {
	if s == nil || s.Kind != SourceFile {
		return ""
	}
	return path.Base(s.Path)
}
