// Package testdata provides embedded test fixtures for use across all test packages.
package testdata

import _ "embed"

// DeviceCertPEM is a P-256 device certificate in the format the element's
// certificate slot holds.
//
//go:embed device_cert.pem
var DeviceCertPEM string
