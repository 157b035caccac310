package schema

import "path/filepath"

// SourceKind tells file-backed documents from payloads that arrived in memory.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindInline SourceKind = "inline"
)

// Source records where a schema document came from. Location doubles as the
// hint used for format detection.
type Source interface {
	Kind() SourceKind
	Location() string
}

type origin struct {
	kind     SourceKind
	location string
}

func (o origin) Kind() SourceKind { return o.kind }
func (o origin) Location() string { return o.location }

// SourceFromFile points at a path on disk.
func SourceFromFile(path string) Source {
	return origin{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS names an entry inside an fs.FS.
func SourceFromFS(name string) Source {
	return origin{kind: SourceKindFS, location: name}
}

// SourceInline labels a payload handed over by the host's transport layer.
// An empty label leaves format detection to content sniffing.
func SourceInline(label string) Source {
	return origin{kind: SourceKindInline, location: label}
}
