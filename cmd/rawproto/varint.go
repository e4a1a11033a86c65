package main

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anirudhraja/rawproto/wire"
)

const flagDecode = "decode"

func newVarintCmd(c *command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "varint <integer | hex bytes>",
		Short: "show the varint encodings of an integer, or the readings of varint bytes",
		Long: `Varint prints the fixed-width (five byte int32, ten byte int64) and
shortest encodings of an integer. With --decode the argument is hex bytes,
spaces allowed, and every reading of the varint they start with is printed.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runVarint),
	}
	cmd.Flags().Bool(flagDecode, false, "argument is hex varint bytes")
	return cmd
}

func runVarint(c *command, cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	arg := strings.Join(args, "")

	if decode, _ := cmd.Flags().GetBool(flagDecode); decode {
		raw, err := hex.DecodeString(strings.ReplaceAll(arg, " ", ""))
		if err != nil {
			return fmt.Errorf("invalid hex: %w", err)
		}
		v, n, err := wire.DecodeVarIntAt(raw, 0)
		if err != nil {
			return err
		}
		closest := wire.Closest(v)
		fmt.Fprintf(w, "%-9s %d\n", "bytes", n)
		fmt.Fprintf(w, "%-9s %d\n", "int32", v.Int32())
		fmt.Fprintf(w, "%-9s %d\n", "int64", v.Int64())
		fmt.Fprintf(w, "%-9s %s (%s)\n", "closest", closest, closest.Kind)
		return nil
	}

	x, err := strconv.ParseInt(arg, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", arg, err)
	}
	if x >= math.MinInt32 && x <= math.MaxInt32 {
		fmt.Fprintf(w, "%-9s % x\n", "int32", wire.EncodeVarInt(int32(x)))
	}
	fmt.Fprintf(w, "%-9s % x\n", "int64", wire.EncodeVarLong(x))
	fmt.Fprintf(w, "%-9s % x\n", "shortest", wire.AppendShortestVarInt(nil, uint64(x)))
	return nil
}
