package tools

import (
	"fmt"
	"io"

	"github.com/named-data/ndnlp/std/lp"
	ndn_io "github.com/named-data/ndnlp/std/utils/io"
	"github.com/named-data/ndnlp/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type Decode struct {
	isHex bool
}

func CmdDecode() *cobra.Command {
	d := Decode{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "decode",
		Short:   "Print the fields of LpPackets",
		Long: `Print the fields of LpPackets read from the standard input.
Each packet is written as a YAML document. Bare Interest and Data
packets are shown as a packet with only a fragment.`,
		Args:    cobra.NoArgs,
		Example: `  ndnlp decode < frames.bin
  echo 6405500305010a | ndnlp decode --hex`,
		RunE: d.run,
	}

	cmd.Flags().BoolVar(&d.isHex, "hex", false, "Input is hex encoded")
	return cmd
}

func (d *Decode) String() string {
	return "decode"
}

func (d *Decode) run(cmd *cobra.Command, _ []string) error {
	in, err := inputStream(cmd.InOrStdin(), d.isHex)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	count := 0
	var frameErr error
	err = ndn_io.ReadTlvStream(in, maxInputFrame, func(frame []byte) bool {
		frameErr = d.print(out, frame, count)
		count++
		return frameErr == nil
	}, nil)
	if frameErr != nil {
		return frameErr
	}
	if err != nil {
		return fmt.Errorf("unable to read frames: %w", err)
	}
	return nil
}

func (d *Decode) print(out io.Writer, frame []byte, index int) error {
	p, err := lp.ParsePacket(frame)
	if err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}
	spec, err := SpecFromPacket(p)
	if err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}
	if index > 0 {
		fmt.Fprintln(out, "---")
	}
	return toolutils.WriteYaml(out, spec)
}
