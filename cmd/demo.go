package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DemoCommand creates the demo command. It prints the outcome of a single
// certificate read and exits successfully either way.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Read the device certificate and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "File the helper writes the certificate to",
				Value: "hello_world.crt",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "Secure element region holding the certificate",
				Value: "0xe0e0",
			},
		},
		Action: runDemoCommand,
	}
}

func runDemoCommand(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := newController(cmd)
	if err != nil {
		return err
	}

	w := outWriter(cmd)
	cert, err := ctrl.ReadCert(ctx, cmd.String("output"), cmd.String("region"))
	if err != nil {
		fmt.Fprintf(w, "cert: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "cert: %s\n", cert)
	return nil
}
