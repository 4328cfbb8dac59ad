package iso9660

import "fmt"

// ErrorKind classifies the ways a decode operation can fail, per the
// decoder's error sum type. Callers that need to branch on failure mode
// should use errors.Is against the Err* sentinels below rather than
// string-matching error text.
type ErrorKind int

const (
	KindIo ErrorKind = iota
	KindNotAnIso
	KindMissingPvd
	KindUnsupportedLogicalBlockSize
	KindMalformedField
	KindRecordCrossesSector
	KindDirectoryNotMultipleOfSector
	KindSuspTruncated
	KindSuspChainTooLong
	KindSuspCycle
	KindRelocationCycle
	KindRelocationDangling
	KindNotFound
	KindNotADirectory
	KindNotAFile
	KindNotASymlink
	KindNameTooLong
	KindAssembledFieldTooLarge
	KindOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindIo:
		return "Io"
	case KindNotAnIso:
		return "NotAnIso"
	case KindMissingPvd:
		return "MissingPvd"
	case KindUnsupportedLogicalBlockSize:
		return "UnsupportedLogicalBlockSize"
	case KindMalformedField:
		return "MalformedField"
	case KindRecordCrossesSector:
		return "RecordCrossesSector"
	case KindDirectoryNotMultipleOfSector:
		return "DirectoryNotMultipleOfSector"
	case KindSuspTruncated:
		return "SuspTruncated"
	case KindSuspChainTooLong:
		return "SuspChainTooLong"
	case KindSuspCycle:
		return "SuspCycle"
	case KindRelocationCycle:
		return "RelocationCycle"
	case KindRelocationDangling:
		return "RelocationDangling"
	case KindNotFound:
		return "NotFound"
	case KindNotADirectory:
		return "NotADirectory"
	case KindNotAFile:
		return "NotAFile"
	case KindNotASymlink:
		return "NotASymlink"
	case KindNameTooLong:
		return "NameTooLong"
	case KindAssembledFieldTooLarge:
		return "AssembledFieldTooLarge"
	case KindOutOfRange:
		return "OutOfRange"
	default:
		return "Unknown"
	}
}

// DecodeError is the concrete error type returned by every decode
// operation in this package. It never represents a panic recovered after
// the fact — it is constructed at the point of detection.
type DecodeError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func newErr(kind ErrorKind, detail string) *DecodeError {
	return &DecodeError{Kind: kind, Detail: detail}
}

func wrapErr(kind ErrorKind, detail string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Detail: detail, Err: err}
}

// wrapErrf is newErr with a formatted detail message.
func wrapErrf(kind ErrorKind, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, iso9660.ErrNotFound) work: two *DecodeError
// values match if their Kind matches, regardless of Detail/Err.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinels for errors.Is comparisons, one per ErrorKind.
var (
	ErrIo                           = &DecodeError{Kind: KindIo}
	ErrNotAnIso                     = &DecodeError{Kind: KindNotAnIso}
	ErrMissingPvd                   = &DecodeError{Kind: KindMissingPvd}
	ErrUnsupportedLogicalBlockSize  = &DecodeError{Kind: KindUnsupportedLogicalBlockSize}
	ErrMalformedField               = &DecodeError{Kind: KindMalformedField}
	ErrRecordCrossesSector          = &DecodeError{Kind: KindRecordCrossesSector}
	ErrDirectoryNotMultipleOfSector = &DecodeError{Kind: KindDirectoryNotMultipleOfSector}
	ErrSuspTruncated                = &DecodeError{Kind: KindSuspTruncated}
	ErrSuspChainTooLong             = &DecodeError{Kind: KindSuspChainTooLong}
	ErrSuspCycle                    = &DecodeError{Kind: KindSuspCycle}
	ErrRelocationCycle              = &DecodeError{Kind: KindRelocationCycle}
	ErrRelocationDangling           = &DecodeError{Kind: KindRelocationDangling}
	ErrNotFound                     = &DecodeError{Kind: KindNotFound}
	ErrNotADirectory                = &DecodeError{Kind: KindNotADirectory}
	ErrNotAFile                     = &DecodeError{Kind: KindNotAFile}
	ErrNotASymlink                  = &DecodeError{Kind: KindNotASymlink}
	ErrNameTooLong                  = &DecodeError{Kind: KindNameTooLong}
	ErrAssembledFieldTooLarge       = &DecodeError{Kind: KindAssembledFieldTooLarge}
	ErrOutOfRange                   = &DecodeError{Kind: KindOutOfRange}
)
