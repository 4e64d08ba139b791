package cmd

import (
	"github.com/urfave/cli/v3"
)

// NewApp creates the trustzonectl command tree
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "trustzonectl",
		Usage: "Trust zone secure element control",
		Flags: GlobalFlags(),
		Commands: []*cli.Command{
			CertCommand(),
			KeyCommand(),
			SignCommand(),
			VerifyCommand(),
			EncryptCommand(),
			DecryptCommand(),
			HMACCommand(),
			InfoCommand(),
			DemoCommand(),
		},
	}
}
