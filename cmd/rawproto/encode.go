package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/anirudhraja/rawproto"
	"github.com/anirudhraja/rawproto/wire"
)

func newEncodeCmd(c *command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [files]",
		Short: "encode the JSON text form back into protobuf bytes",
		Long: `Encode reads JSON documents in the form printed by "rawproto decode" and
writes their protobuf encoding. Each file holds one message; several files
require --framing.

Varints are written as fixed five or ten byte groups unless --shortest is
given. A list of varint candidates encodes its last element.
`,
		RunE: mkRunE(c, runEncode),
	}

	f := cmd.Flags()
	f.Bool(flagBase64, false, "write standard Base64 text instead of raw bytes")
	f.Bool(flagShortest, false, "write canonical shortest-form varints")
	f.String(flagCompress, codecNone, fmt.Sprintf("output compression: %s", strings.Join(codecs, ", ")))
	f.String(flagFraming, framingNone, fmt.Sprintf("output framing: %s", strings.Join(framings, ", ")))
	return cmd
}

func runEncode(c *command, cmd *cobra.Command, args []string) error {
	in, err := c.newInspector(cmd)
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	framing, _ := cmd.Flags().GetString(flagFraming)
	if len(inputs) > 1 && (framing == framingNone || framing == "") {
		return fmt.Errorf("%d inputs need --%s", len(inputs), flagFraming)
	}

	var out []byte
	for _, inp := range inputs {
		msg, err := rawproto.ParseJSON(inp.data)
		if err != nil {
			return fmt.Errorf("%s: %w", inp.name, err)
		}
		payload, err := in.Encode(msg)
		if err != nil {
			return fmt.Errorf("%s: %w", inp.name, err)
		}
		if out, err = appendFrame(framing, out, payload); err != nil {
			return err
		}
	}

	codec, _ := cmd.Flags().GetString(flagCompress)
	if out, err = compress(codec, out); err != nil {
		return err
	}
	level.Info(c.logger).Log("msg", "encoded", "messages", len(inputs), "size", humanize.Bytes(uint64(len(out))), "compression", codec)

	w := cmd.OutOrStdout()
	if isBase64, _ := cmd.Flags().GetBool(flagBase64); isBase64 {
		_, err = io.WriteString(w, wire.Base64Encode(out)+"\n")
		return err
	}
	_, err = w.Write(out)
	return err
}
