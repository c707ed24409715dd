package tools

import (
	"encoding/hex"
	"fmt"

	"github.com/named-data/ndnlp/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type Encode struct {
	isHex bool
}

func CmdEncode() *cobra.Command {
	e := Encode{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "encode SPEC-FILE",
		Short:   "Encode an LpPacket from a YAML description",
		Long: `Encode an LpPacket described by a YAML file.
The file uses the same keys as the output of decode.
The packet is written to the standard output.`,
		Args:    cobra.ExactArgs(1),
		Example: `  ndnlp encode nack.yml > nack.bin
  ndnlp encode nack.yml --hex`,
		RunE: e.run,
	}

	cmd.Flags().BoolVar(&e.isHex, "hex", false, "Write hex instead of binary")
	return cmd
}

func (e *Encode) String() string {
	return "encode"
}

func (e *Encode) run(cmd *cobra.Command, args []string) error {
	var spec PacketSpec
	if err := toolutils.ReadYaml(&spec, args[0]); err != nil {
		return err
	}
	p, err := spec.Packet()
	if err != nil {
		return fmt.Errorf("invalid packet description: %w", err)
	}

	out := cmd.OutOrStdout()
	if e.isHex {
		_, err = fmt.Fprintln(out, hex.EncodeToString(p.Bytes()))
	} else {
		_, err = out.Write(p.Bytes())
	}
	return err
}
