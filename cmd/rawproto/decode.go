package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/anirudhraja/rawproto"
	"github.com/anirudhraja/rawproto/wire"
)

func newDecodeCmd(c *command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [files]",
		Short: "decode protobuf payloads without a schema",
		Long: `Decode reads protobuf payloads from the given files, or from stdin when
no file or "-" is given, and prints each in JSON or YAML text form.

Processing order per input: Base64 text decoding (--base64), decompression
(--decompress), then splitting into payloads (--framing). Payloads are
decoded concurrently and printed in input order.

Varints whose readings disagree are printed as a list of candidates:
[int32, int64?, uint32?, uint64?].
`,
		RunE: mkRunE(c, runDecode),
	}

	f := cmd.Flags()
	f.Bool(flagBase64, false, "inputs are standard Base64 text")
	f.StringP(flagOutput, "o", string(rawproto.FormatJSON), "output format: json or yaml")
	f.Int(flagMaxDepth, wire.DefaultMaxDepth, "deepest nested message to decode")
	f.String(flagDecompress, codecNone, fmt.Sprintf("input compression: %s", strings.Join(codecs, ", ")))
	f.String(flagFraming, framingNone, fmt.Sprintf("input framing: %s", strings.Join(framings, ", ")))
	addSchemaFlags(f)
	return cmd
}

type input struct {
	name string
	data []byte
}

// readInputs reads every named file; "-" or no argument reads stdin.
func readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		var (
			data []byte
			err  error
		)
		if name == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input{name: name, data: data})
	}
	return inputs, nil
}

func runDecode(c *command, cmd *cobra.Command, args []string) error {
	format, err := rawproto.ParseFormat(c.stringFlag(cmd, flagOutput, c.cfg.Output))
	if err != nil {
		return err
	}
	in, err := c.newInspector(cmd)
	if err != nil {
		return err
	}

	messageType := c.stringFlag(cmd, flagMessage, c.cfg.Message)
	if messageType != "" {
		if messageType, err = in.ResolveMessage(messageType); err != nil {
			return err
		}
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	isBase64, _ := cmd.Flags().GetBool(flagBase64)
	codec, _ := cmd.Flags().GetString(flagDecompress)
	framing, _ := cmd.Flags().GetString(flagFraming)

	var (
		payloads [][]byte
		names    []string
		total    int
	)
	for _, inp := range inputs {
		data := inp.data
		if isBase64 {
			if data, err = wire.Base64Decode(strings.TrimSpace(string(data))); err != nil {
				return fmt.Errorf("%s: %w", inp.name, err)
			}
		}
		if data, err = decompress(codec, data); err != nil {
			return fmt.Errorf("%s: %w", inp.name, err)
		}
		frames, err := splitFrames(framing, data)
		if err != nil {
			return fmt.Errorf("%s: %w", inp.name, err)
		}

		level.Debug(c.logger).Log("msg", "read input", "input", inp.name, "size", humanize.Bytes(uint64(len(data))), "payloads", len(frames))
		for i, frame := range frames {
			name := inp.name
			if len(frames) > 1 {
				name = fmt.Sprintf("%s#%d", inp.name, i)
			}
			payloads = append(payloads, frame)
			names = append(names, name)
			total += len(frame)
		}
	}

	msgs, err := in.DecodeAll(cmd.Context(), payloads)
	if err != nil {
		level.Error(c.logger).Log("msg", "decode failed", "inputs", strings.Join(names, ","), "err", err)
		return err
	}
	level.Info(c.logger).Log("msg", "decoded", "payloads", len(msgs), "size", humanize.Bytes(uint64(total)))

	w := cmd.OutOrStdout()
	for i, msg := range msgs {
		out, err := in.Render(msg, format, messageType)
		if err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
		if format == rawproto.FormatYAML && i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
		if format == rawproto.FormatJSON {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
