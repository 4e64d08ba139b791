// Package trustzone provides a control interface to a trust zone secure
// element such as the OPTIGA Trust M.
//
// Certificates are extracted by a privileged helper binary; credential
// storage and every cryptographic primitive go through device files whose
// content is produced by the element. No cryptography runs in host memory.
//
// # Usage
//
//	ctrl, err := trustzone.New(trustzone.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	cert, err := ctrl.ReadCert(ctx, "device.crt", "0xe0e0")
//	if trustzone.IsKind(err, trustzone.KindUnableToReadTrustZoneCert) {
//		// retry or report
//	}
//
// # Errors
//
// Every operation fails with a *TrustOperationError. The kind reported per
// operation comes from an ErrorMapping: LegacyErrorMapping reports all crypto
// delegation failures as KindUnableToReadTrustZoneCert, DedicatedErrorMapping
// gives each operation its own kind.
package trustzone
