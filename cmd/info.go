package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

// InfoCommand creates the info command
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show which secure element interfaces are present",
		Action: runInfoCommand,
	}
}

func runInfoCommand(ctx context.Context, cmd *cli.Command) error {
	if err := checkFormat(cmd); err != nil {
		return err
	}
	ctrl, err := newController(cmd)
	if err != nil {
		return err
	}

	info, infoErr := ctrl.Info(ctx)
	res := newResult(trustzone.OpInfo, "", infoErr)
	res.Info = info
	if err := writeResult(cmd, res, ""); err != nil {
		return err
	}
	if infoErr != nil {
		return fmt.Errorf("failed to probe secure element: %w", infoErr)
	}
	return nil
}

func writeInfo(cmd *cli.Command, info *trustzone.DeviceInfo) {
	w := outWriter(cmd)
	ok := color.New(color.FgGreen).SprintFunc()
	missing := color.New(color.FgRed).SprintFunc()

	mark := func(present bool) string {
		if present {
			return ok("present")
		}
		return missing("missing")
	}

	fmt.Fprintln(w, "Trust Zone Information:")
	fmt.Fprintf(w, "  Root Path:   %s\n", info.RootPath)
	fmt.Fprintf(w, "  Helper:      %s (%s)\n", info.HelperPath, mark(info.HelperPresent))
	for _, p := range info.Paths {
		fmt.Fprintf(w, "  %-12s %s (%s)\n", p.Name+":", p.Path, mark(p.Present))
	}
}
