package trustzone

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed trust zone operation.
type ErrorKind int

const (
	KindUnableToReadTrustZoneCert ErrorKind = iota + 1
	KindFileReadError
	KindUnableToWriteTrustZoneCert
	KindUnableToRemoveTrustZoneCert
	KindUnableToGenerateToken
	KindUnableToSignTrust
	KindUnableToVerifyToken
	KindUnableToGenerateTrustHMACKeys
	KindUnableToReadTrustDeviceKey
	KindUnableToDecryptTrust
	KindUnableToEncryptTrust
)

// Display names are matched by external tooling. The two "Genrate" spellings
// are kept as-is.
var kindNames = map[ErrorKind]string{
	KindUnableToReadTrustZoneCert:     "UnableToReadTrustZoneCert",
	KindFileReadError:                 "FileReadError",
	KindUnableToWriteTrustZoneCert:    "UnableToWriteTrustZoneCert",
	KindUnableToRemoveTrustZoneCert:   "UnableToRemoveTrustZoneCert",
	KindUnableToGenerateToken:         "UnableToGenrateToken",
	KindUnableToSignTrust:             "UnableToSignTrust",
	KindUnableToVerifyToken:           "UnableToVerifyToken",
	KindUnableToGenerateTrustHMACKeys: "UnableToGenrateTrustHMACKeys",
	KindUnableToReadTrustDeviceKey:    "UnableToReadTrustDeviceKey",
	KindUnableToDecryptTrust:          "UnableToDecryptTrust",
	KindUnableToEncryptTrust:          "UnableToEncryptTrust",
}

// Kinds returns every defined ErrorKind in declaration order.
func Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(kindNames))
	for k := KindUnableToReadTrustZoneCert; k <= KindUnableToEncryptTrust; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the stable display name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// TrustOperationError is returned by every Controller operation on failure.
type TrustOperationError struct {
	Kind    ErrorKind
	Message string
	// Err is the transport-level cause, if any.
	Err error
}

func newError(kind ErrorKind, cause error, format string, args ...any) *TrustOperationError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}
	return &TrustOperationError{Kind: kind, Message: msg, Err: cause}
}

func (e *TrustOperationError) Error() string {
	return fmt.Sprintf("(code: %s, message: %s)", e.Kind, e.Message)
}

func (e *TrustOperationError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err, looking through wrapped errors.
func KindOf(err error) (ErrorKind, bool) {
	var opErr *TrustOperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
