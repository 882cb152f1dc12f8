// Package enums provides type-safe enumeration types for the persistence layer.
//
// The enum types are defined as unexported integer types in this file and the go:generate
// directives invoke go-pkgz/enum to create exported types with String, Parse, MarshalText,
// UnmarshalText, Value and Scan methods in the *_enum.go files.
//
// Names are kept in their capitalized form ("Jar", "Running") because binary types are stored
// in the BINARIES table as is.
//
// To regenerate the enum types after modifications:
//
//	go generate ./app/persistence/enums
package enums

//go:generate go run github.com/go-pkgz/enum@latest -type binaryType
//go:generate go run github.com/go-pkgz/enum@latest -type jobStatus

// binaryType represents the kind of uploaded artifact.
// Use the exported BinaryType type and its constants in actual code.
type binaryType int

const (
	binaryTypeJar binaryType = iota
	binaryTypeEgg
)

// jobStatus represents the derived status of a job. It is never stored.
// Use the exported JobStatus type and its constants in actual code.
type jobStatus int

const (
	jobStatusRunning jobStatus = iota
	jobStatusError
	jobStatusFinished
)

// Extension returns file extension used for cached binaries of this type
func (e BinaryType) Extension() string {
	switch e {
	case BinaryTypeEgg:
		return "egg"
	default:
		return "jar"
	}
}
