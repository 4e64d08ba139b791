package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

func dataFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "data",
		Usage:    usage,
		Required: true,
	}
}

// KeyCommand creates the key commands
func KeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Trust zone key material",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a key inside the secure element",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runOperation(ctx, cmd, trustzone.OpGenerateKey, "",
						func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
							return ctrl.GenerateKey(ctx)
						})
				},
			},
		},
	}
}

// SignCommand creates the sign command
func SignCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign data with the secure element",
		Flags: []cli.Flag{dataFlag("Reference to the data to sign")},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data := cmd.String("data")
			return runOperation(ctx, cmd, trustzone.OpSign, "",
				func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
					return ctrl.Sign(ctx, data)
				})
		},
	}
}

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify data with the secure element",
		Flags: []cli.Flag{dataFlag("Reference to the data to verify")},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data := cmd.String("data")
			return runOperation(ctx, cmd, trustzone.OpVerify, "",
				func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
					return ctrl.Verify(ctx, data)
				})
		},
	}
}

// EncryptCommand creates the encrypt command
func EncryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "encrypt",
		Usage: "Encrypt data with the secure element",
		Flags: []cli.Flag{
			dataFlag("Reference to the data to encrypt"),
			&cli.StringFlag{
				Name:  "key",
				Usage: "Reference to the key to encrypt with",
			},
		},
		Action: runEncryptCommand,
	}
}

func runEncryptCommand(ctx context.Context, cmd *cli.Command) error {
	data := cmd.String("data")
	key := cmd.String("key")

	if key == "" {
		return runOperation(ctx, cmd, trustzone.OpEncrypt, "",
			func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
				return ctrl.Encrypt(ctx, data)
			})
	}
	return runOperation(ctx, cmd, trustzone.OpEncryptWithKey, "",
		func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
			return ctrl.EncryptWithKey(ctx, data, key)
		})
}

// DecryptCommand creates the decrypt command
func DecryptCommand() *cli.Command {
	return &cli.Command{
		Name:  "decrypt",
		Usage: "Decrypt data with the secure element",
		Flags: []cli.Flag{dataFlag("Reference to the data to decrypt")},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data := cmd.String("data")
			return runOperation(ctx, cmd, trustzone.OpDecrypt, "",
				func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
					return ctrl.Decrypt(ctx, data)
				})
		},
	}
}

// HMACCommand creates the hmac command
func HMACCommand() *cli.Command {
	return &cli.Command{
		Name:  "hmac",
		Usage: "Generate an HMAC with the secure element",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runOperation(ctx, cmd, trustzone.OpGenerateHMAC, "",
				func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
					return ctrl.GenerateHMAC(ctx)
				})
		},
	}
}
