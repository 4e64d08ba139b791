package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fxamacker/cbor/v2"
	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatCBOR = "cbor"
)

// Result is the envelope printed for every operation.
type Result struct {
	Operation string                `json:"operation" cbor:"operation"`
	OK        bool                  `json:"ok" cbor:"ok"`
	Value     string                `json:"value,omitempty" cbor:"value,omitempty"`
	Info      *trustzone.DeviceInfo `json:"info,omitempty" cbor:"info,omitempty"`
	ErrorKind string                `json:"errorKind,omitempty" cbor:"errorKind,omitempty"`
	Message   string                `json:"message,omitempty" cbor:"message,omitempty"`
}

func newResult(op trustzone.Operation, value string, err error) Result {
	res := Result{Operation: op.String(), OK: err == nil, Value: value}
	if err != nil {
		res.Message = err.Error()
		if kind, ok := trustzone.KindOf(err); ok {
			res.ErrorKind = kind.String()
		}
	}
	return res
}

// writeResult prints res in the selected format. In text mode failures are
// left to the caller, which reports the returned error. An empty done marks an
// operation that returns a value; the value is printed even when empty.
func writeResult(cmd *cli.Command, res Result, done string) error {
	w := outWriter(cmd)

	switch format := cmd.String("format"); format {
	case formatJSON:
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(w, string(out))
	case formatCBOR:
		out, err := cbor.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	case formatText, "":
		if !res.OK {
			return nil
		}
		switch {
		case res.Info != nil:
			writeInfo(cmd, res.Info)
		case done == "":
			fmt.Fprint(w, res.Value)
			if !strings.HasSuffix(res.Value, "\n") {
				fmt.Fprintln(w)
			}
		default:
			color.New(color.FgGreen).Fprintf(w, "✓ %s\n", done)
		}
	default:
		return fmt.Errorf("unsupported format %q: expected text, json or cbor", format)
	}
	return nil
}

func checkFormat(cmd *cli.Command) error {
	switch format := cmd.String("format"); format {
	case formatText, formatJSON, formatCBOR, "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q: expected text, json or cbor", format)
	}
}

// runOperation builds a controller, runs fn and prints its result.
func runOperation(ctx context.Context, cmd *cli.Command, op trustzone.Operation, done string,
	fn func(ctx context.Context, ctrl *trustzone.Controller) (string, error)) error {
	if err := checkFormat(cmd); err != nil {
		return err
	}
	ctrl, err := newController(cmd)
	if err != nil {
		return err
	}

	value, opErr := fn(ctx, ctrl)
	if err := writeResult(cmd, newResult(op, value, opErr), done); err != nil {
		return err
	}
	if opErr != nil {
		return fmt.Errorf("%s failed: %w", op, opErr)
	}
	return nil
}
