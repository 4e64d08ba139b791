package trustzone

import (
	"fmt"
	"strings"
)

// Operation identifies a Controller capability.
type Operation int

const (
	OpReadCert Operation = iota + 1
	OpWriteCert
	OpRemoveCert
	OpReadStoredCert
	OpGenerateKey
	OpSign
	OpVerify
	OpEncrypt
	OpDecrypt
	OpEncryptWithKey
	OpGenerateHMAC
	OpInfo
)

var operationTasks = map[Operation]string{
	OpReadCert:       "read_trustzone_cert",
	OpWriteCert:      "write_trustzone_cert",
	OpRemoveCert:     "remove_trustzone_cert",
	OpReadStoredCert: "read_stored_trustzone_cert",
	OpGenerateKey:    "generate_trustzone_key",
	OpSign:           "sign_trustzone_data",
	OpVerify:         "verify_trustzone_data",
	OpEncrypt:        "encrypt_trustzone_data",
	OpDecrypt:        "decrypt_trustzone_data",
	OpEncryptWithKey: "encrypt_trustzone_data_with_key",
	OpGenerateHMAC:   "generate_trustzone_hmac",
	OpInfo:           "trustzone_info",
}

// Operations returns every Operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationTasks))
	for op := OpReadCert; op <= OpInfo; op++ {
		ops = append(ops, op)
	}
	return ops
}

// String returns the task name used in logs.
func (o Operation) String() string {
	if task, ok := operationTasks[o]; ok {
		return task
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// ErrorMapping decides which ErrorKind an operation reports on failure.
type ErrorMapping map[Operation]ErrorKind

// Mapping names accepted by ParseErrorMapping.
const (
	MappingLegacy    = "legacy"
	MappingDedicated = "dedicated"
)

// LegacyErrorMapping reports every crypto delegation failure as
// UnableToReadTrustZoneCert, as deployed firmware tooling expects.
func LegacyErrorMapping() ErrorMapping {
	return ErrorMapping{
		OpReadCert:       KindUnableToReadTrustZoneCert,
		OpWriteCert:      KindUnableToWriteTrustZoneCert,
		OpRemoveCert:     KindUnableToRemoveTrustZoneCert,
		OpReadStoredCert: KindFileReadError,
		OpGenerateKey:    KindUnableToReadTrustZoneCert,
		OpSign:           KindUnableToReadTrustZoneCert,
		OpVerify:         KindUnableToReadTrustZoneCert,
		OpEncrypt:        KindUnableToReadTrustZoneCert,
		OpDecrypt:        KindUnableToReadTrustZoneCert,
		OpEncryptWithKey: KindUnableToReadTrustZoneCert,
		OpGenerateHMAC:   KindUnableToReadTrustZoneCert,
		OpInfo:           KindFileReadError,
	}
}

// DedicatedErrorMapping reports each operation under its own kind.
func DedicatedErrorMapping() ErrorMapping {
	m := LegacyErrorMapping()
	m[OpGenerateKey] = KindUnableToGenerateToken
	m[OpSign] = KindUnableToSignTrust
	m[OpVerify] = KindUnableToVerifyToken
	m[OpEncrypt] = KindUnableToEncryptTrust
	m[OpDecrypt] = KindUnableToDecryptTrust
	m[OpEncryptWithKey] = KindUnableToEncryptTrust
	m[OpGenerateHMAC] = KindUnableToGenerateTrustHMACKeys
	return m
}

// ParseErrorMapping resolves a mapping by name. An empty name selects legacy.
func ParseErrorMapping(name string) (ErrorMapping, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MappingLegacy:
		return LegacyErrorMapping(), nil
	case MappingDedicated:
		return DedicatedErrorMapping(), nil
	default:
		return nil, fmt.Errorf("unknown error mapping %q: expected %q or %q", name, MappingLegacy, MappingDedicated)
	}
}

// KindFor returns the kind reported for op. Operations missing from m fall
// back to the legacy table.
func (m ErrorMapping) KindFor(op Operation) ErrorKind {
	if k, ok := m[op]; ok {
		return k
	}
	return LegacyErrorMapping()[op]
}
