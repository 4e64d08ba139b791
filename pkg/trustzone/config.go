package trustzone

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default locations of the secure element's host-side interface.
//
// DefaultHMACPath is a dedicated node. Older firmware serves HMAC values from
// the encrypt node; set HMACPath to DefaultEncryptPath on such devices.
const (
	DefaultRootPath      = "/MECHA_TEST/optiga_trust_m"
	DefaultHelperName    = "trustm_cert"
	DefaultCertPath      = "/dev/trustzone_cert"
	DefaultKeyPath       = "/dev/trustzone_key"
	DefaultSignPath      = "/dev/trustzone_sign"
	DefaultVerifyPath    = "/dev/trustzone_verify"
	DefaultEncryptPath   = "/dev/trustzone_encrypt"
	DefaultDecryptPath   = "/dev/trustzone_decrypt"
	DefaultHMACPath      = "/dev/trustzone_hmac"
	DefaultHelperTimeout = 30 * time.Second
)

// Config holds every path and limit the Controller uses. Zero fields are
// filled from the defaults by WithDefaults. HMACPath defaults to
// /dev/trustzone_hmac, not the encrypt node older releases read.
type Config struct {
	RootPath      string        `yaml:"root_path"`
	HelperPath    string        `yaml:"helper_path"`
	CertPath      string        `yaml:"cert_path"`
	KeyPath       string        `yaml:"key_path"`
	SignPath      string        `yaml:"sign_path"`
	VerifyPath    string        `yaml:"verify_path"`
	EncryptPath   string        `yaml:"encrypt_path"`
	DecryptPath   string        `yaml:"decrypt_path"`
	HMACPath      string        `yaml:"hmac_path"`
	HelperTimeout time.Duration `yaml:"helper_timeout"`
	ErrorMapping  string        `yaml:"error_mapping"`
}

// DefaultConfig returns the configuration for a stock device.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig decodes YAML without applying defaults, so callers can layer
// overrides before WithDefaults derives dependent paths.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefaults returns a copy of c with empty fields set. The helper path is
// derived from the root path, so overriding RootPath moves the helper too.
func (c Config) WithDefaults() Config {
	if c.RootPath == "" {
		c.RootPath = DefaultRootPath
	}
	if c.HelperPath == "" {
		c.HelperPath = filepath.Join(c.RootPath, DefaultHelperName)
	}
	setDefault(&c.CertPath, DefaultCertPath)
	setDefault(&c.KeyPath, DefaultKeyPath)
	setDefault(&c.SignPath, DefaultSignPath)
	setDefault(&c.VerifyPath, DefaultVerifyPath)
	setDefault(&c.EncryptPath, DefaultEncryptPath)
	setDefault(&c.DecryptPath, DefaultDecryptPath)
	setDefault(&c.HMACPath, DefaultHMACPath)
	if c.HelperTimeout == 0 {
		c.HelperTimeout = DefaultHelperTimeout
	}
	if c.ErrorMapping == "" {
		c.ErrorMapping = MappingLegacy
	}
	return c
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate checks a defaulted configuration.
func (c Config) Validate() error {
	if c.HelperTimeout < 0 {
		return fmt.Errorf("invalid helper_timeout %s: must not be negative", c.HelperTimeout)
	}
	if _, err := ParseErrorMapping(c.ErrorMapping); err != nil {
		return err
	}
	return nil
}

// DevicePaths returns the element-backed file paths keyed by their config
// name.
func (c Config) DevicePaths() map[string]string {
	return map[string]string{
		"cert_path":    c.CertPath,
		"key_path":     c.KeyPath,
		"sign_path":    c.SignPath,
		"verify_path":  c.VerifyPath,
		"encrypt_path": c.EncryptPath,
		"decrypt_path": c.DecryptPath,
		"hmac_path":    c.HMACPath,
	}
}
