package neoupload

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrFile indicates the input file is missing or unreadable.
	ErrFile = errors.New("file error")

	// ErrParse indicates malformed JSON or a schema violation: a missing
	// label, a malformed edge key, an unsupported property value type.
	ErrParse = errors.New("parse error")

	// ErrReference indicates an edge referencing a node id that does not
	// exist in the document's node map.
	ErrReference = errors.New("reference error")

	// ErrDatabase indicates a connection, authentication, or
	// statement-execution failure reported by the Neo4j driver.
	ErrDatabase = errors.New("database error")
)

// FileError reports that the graph document could not be read.
// Wraps ErrFile for errors.Is() compatibility.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFile.Error(), e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return ErrFile }

// ParseError reports malformed JSON or a schema violation. Key names the
// offending node id, edge key, or property path so the user can locate
// the problem in the document.
// Wraps ErrParse for errors.Is() compatibility.
type ParseError struct {
	Key string // offending key or identifier, empty for document-level errors
	Msg string
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrParse.Error(), e.Key, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ReferenceError reports an edge whose key names a node id that is not
// present in the document's node map.
// Wraps ErrReference for errors.Is() compatibility.
type ReferenceError struct {
	EdgeKey string
	NodeID  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: edge %q uses node %q which cannot be found in the nodes",
		ErrReference.Error(), e.EdgeKey, e.NodeID)
}

func (e *ReferenceError) Unwrap() error { return ErrReference }

// DatabaseError reports a failed database operation. Op names the step
// that failed ("connect", "clear", "create node n1", ...).
// Wraps ErrDatabase for errors.Is() compatibility.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDatabase.Error(), e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return ErrDatabase }
