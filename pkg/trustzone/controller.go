package trustzone

import (
	"context"
	"io/fs"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Controller mediates every interaction with the secure element. It keeps no
// key material; values flow from the Transport straight back to the caller.
// A Controller is safe for concurrent use: operations touching the same device
// path are serialised.
type Controller struct {
	cfg       Config
	transport Transport
	mapping   ErrorMapping
	log       zerolog.Logger
	locks     *pathLocks
}

// Option customises a Controller.
type Option func(*Controller)

// WithTransport replaces the device transport.
func WithTransport(t Transport) Option {
	return func(c *Controller) {
		c.transport = t
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithErrorMapping overrides the mapping selected by Config.ErrorMapping.
func WithErrorMapping(m ErrorMapping) Option {
	return func(c *Controller) {
		c.mapping = maps.Clone(m)
	}
}

// New creates a Controller. Empty fields of cfg take their defaults, so
// New(Config{}) targets DefaultRootPath.
func New(cfg Config, opts ...Option) (*Controller, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapping, err := ParseErrorMapping(cfg.ErrorMapping)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:       cfg,
		transport: NewDeviceTransport(cfg.HelperTimeout),
		mapping:   mapping,
		log:       zerolog.Nop(),
		locks:     newPathLocks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "trustzone").Logger()
	return c, nil
}

// RootPath returns the base path of the element's host-side interface.
func (c *Controller) RootPath() string {
	return c.cfg.RootPath
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ReadCert has the helper extract the certificate stored in region into
// outputFile, then returns the file's content. Any file already at outputFile
// is removed first, so only what this helper run wrote is returned.
func (c *Controller) ReadCert(ctx context.Context, outputFile, region string) (string, error) {
	log := c.begin(OpReadCert)
	if outputFile == "" || region == "" {
		return "", c.fail(log, OpReadCert, errors.New("output file and region are required"), "unable to read cert")
	}
	defer c.locks.lock(c.cfg.HelperPath, outputFile)()

	if err := c.transport.RemoveFile(ctx, outputFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", c.fail(log, OpReadCert, err, "unable to clear cert output")
	}

	stdout, err := c.transport.RunHelper(ctx, c.cfg.HelperPath, "-r", region, "-o", outputFile)
	if err != nil {
		return "", c.fail(log, OpReadCert, err, "unable to read cert")
	}
	log.Info().
		Str("region", region).
		Str("output", strings.TrimSpace(string(stdout))).
		Msg("helper finished")

	cert, err := c.transport.ReadFile(ctx, outputFile)
	if err != nil {
		return "", c.fail(log, OpReadCert, err, "unable to read cert")
	}
	log.Info().Int("bytes", len(cert)).Msg("cert read")
	return string(cert), nil
}

// WriteCert stores cert in the element's certificate slot.
func (c *Controller) WriteCert(ctx context.Context, cert string) error {
	log := c.begin(OpWriteCert)
	defer c.locks.lock(c.cfg.CertPath)()

	if err := c.transport.WriteFile(ctx, c.cfg.CertPath, []byte(cert)); err != nil {
		return c.fail(log, OpWriteCert, err, "unable to write cert")
	}
	log.Info().Int("bytes", len(cert)).Msg("cert written")
	return nil
}

// RemoveCert erases the element's certificate slot.
func (c *Controller) RemoveCert(ctx context.Context) error {
	log := c.begin(OpRemoveCert)
	defer c.locks.lock(c.cfg.CertPath)()

	if err := c.transport.RemoveFile(ctx, c.cfg.CertPath); err != nil {
		return c.fail(log, OpRemoveCert, err, "unable to remove cert")
	}
	log.Info().Msg("cert removed")
	return nil
}

// ReadStoredCert returns the content of the certificate slot written by
// WriteCert.
func (c *Controller) ReadStoredCert(ctx context.Context) (string, error) {
	return c.readValue(ctx, c.begin(OpReadStoredCert), OpReadStoredCert, c.cfg.CertPath, "cert")
}

// The element consumes crypto inputs out of band. The data and key references
// below are accepted for callers' bookkeeping and are not transmitted.

// GenerateKey returns key material produced by the element.
func (c *Controller) GenerateKey(ctx context.Context) (string, error) {
	return c.readValue(ctx, c.begin(OpGenerateKey), OpGenerateKey, c.cfg.KeyPath, "key")
}

// Sign returns the element's signature over data.
func (c *Controller) Sign(ctx context.Context, data string) (string, error) {
	log := c.begin(OpSign)
	log.Debug().Int("data_len", len(data)).Msg("request")
	return c.readValue(ctx, log, OpSign, c.cfg.SignPath, "signed_data")
}

// Verify returns the element's verification result for data.
func (c *Controller) Verify(ctx context.Context, data string) (string, error) {
	log := c.begin(OpVerify)
	log.Debug().Int("data_len", len(data)).Msg("request")
	return c.readValue(ctx, log, OpVerify, c.cfg.VerifyPath, "verified_data")
}

// Encrypt returns the element's ciphertext for data.
func (c *Controller) Encrypt(ctx context.Context, data string) (string, error) {
	log := c.begin(OpEncrypt)
	log.Debug().Int("data_len", len(data)).Msg("request")
	return c.readValue(ctx, log, OpEncrypt, c.cfg.EncryptPath, "encrypted_data")
}

// Decrypt returns the element's plaintext for data.
func (c *Controller) Decrypt(ctx context.Context, data string) (string, error) {
	log := c.begin(OpDecrypt)
	log.Debug().Int("data_len", len(data)).Msg("request")
	return c.readValue(ctx, log, OpDecrypt, c.cfg.DecryptPath, "decrypted_data")
}

// EncryptWithKey returns the element's ciphertext for data under key.
func (c *Controller) EncryptWithKey(ctx context.Context, data, key string) (string, error) {
	log := c.begin(OpEncryptWithKey)
	log.Debug().
		Int("data_len", len(data)).
		Int("key_len", len(key)).
		Msg("request")
	return c.readValue(ctx, log, OpEncryptWithKey, c.cfg.EncryptPath, "encrypted_data")
}

// GenerateHMAC returns an HMAC value produced by the element.
func (c *Controller) GenerateHMAC(ctx context.Context) (string, error) {
	return c.readValue(ctx, c.begin(OpGenerateHMAC), OpGenerateHMAC, c.cfg.HMACPath, "generated_hmac")
}

// readValue reads a value the element has already computed.
func (c *Controller) readValue(ctx context.Context, log zerolog.Logger, op Operation, path, what string) (string, error) {
	defer c.locks.lock(path)()

	data, err := c.transport.ReadFile(ctx, path)
	if err != nil {
		return "", c.fail(log, op, err, "unable to read %s", what)
	}
	// Values may be secret; only their size is logged.
	log.Info().Int("bytes", len(data)).Msgf("%s read", what)
	return string(data), nil
}

func (c *Controller) begin(op Operation) zerolog.Logger {
	log := c.log.With().
		Str("task", op.String()).
		Str("op_id", uuid.NewString()).
		Logger()
	log.Trace().Msg("init")
	return log
}

func (c *Controller) fail(log zerolog.Logger, op Operation, cause error, format string, args ...any) error {
	opErr := newError(c.mapping.KindFor(op), cause, format, args...)
	log.Error().
		Str("kind", opErr.Kind.String()).
		Msg(opErr.Message)
	return opErr
}
