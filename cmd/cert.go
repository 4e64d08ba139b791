package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

// CertCommand creates the certificate commands
func CertCommand() *cli.Command {
	return &cli.Command{
		Name:  "cert",
		Usage: "Read, store and erase trust zone certificates",
		Commands: []*cli.Command{
			readCertCommand(),
			writeCertCommand(),
			removeCertCommand(),
			showCertCommand(),
		},
	}
}

func readCertCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Extract a certificate from a secure element region",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Usage:    "File the helper writes the certificate to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "region",
				Usage:    "Secure element region holding the certificate (e.g. 0xe0e0)",
				Required: true,
			},
		},
		Action: runReadCertCommand,
	}
}

func runReadCertCommand(ctx context.Context, cmd *cli.Command) error {
	output := cmd.String("output")
	region := cmd.String("region")

	return runOperation(ctx, cmd, trustzone.OpReadCert, "",
		func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
			return ctrl.ReadCert(ctx, output, region)
		})
}

func writeCertCommand() *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Store a certificate in the secure element",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Path to the certificate to store",
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Certificate text to store",
			},
		},
		Action: runWriteCertCommand,
	}
}

func runWriteCertCommand(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.String("file")
	data := cmd.String("data")

	if filePath == "" && data == "" {
		return fmt.Errorf("either --file or --data must be provided")
	}
	if filePath != "" && data != "" {
		return fmt.Errorf("only one of --file or --data should be provided")
	}

	cert := data
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read certificate file: %w", err)
		}
		cert = string(raw)
	}

	return runOperation(ctx, cmd, trustzone.OpWriteCert, "certificate stored",
		func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
			return "", ctrl.WriteCert(ctx, cert)
		})
}

func removeCertCommand() *cli.Command {
	return &cli.Command{
		Name:   "remove",
		Usage:  "Erase the stored certificate",
		Action: runRemoveCertCommand,
	}
}

func runRemoveCertCommand(ctx context.Context, cmd *cli.Command) error {
	return runOperation(ctx, cmd, trustzone.OpRemoveCert, "certificate removed",
		func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
			return "", ctrl.RemoveCert(ctx)
		})
}

func showCertCommand() *cli.Command {
	return &cli.Command{
		Name:   "show",
		Usage:  "Print the stored certificate",
		Action: runShowCertCommand,
	}
}

func runShowCertCommand(ctx context.Context, cmd *cli.Command) error {
	return runOperation(ctx, cmd, trustzone.OpReadStoredCert, "",
		func(ctx context.Context, ctrl *trustzone.Controller) (string, error) {
			return ctrl.ReadStoredCert(ctx)
		})
}
