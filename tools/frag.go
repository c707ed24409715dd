package tools

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/named-data/ndnlp/link"
	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/log"
	"github.com/named-data/ndnlp/std/utils/toolutils"
	"github.com/spf13/cobra"
)

type Frag struct {
	mtu    int
	config string
	isHex  bool
	verify bool
}

func CmdFrag() *cobra.Command {
	f := Frag{}

	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "frag",
		Short:   "Fragment a network packet into LpPacket frames",
		Long: `Fragment a network packet read from the standard input.
Each frame is written to the standard output as one hex line,
and the link counters are written to the standard error.

Link options can be loaded from a YAML file with --config.
The --mtu flag overrides the MTU of the file.`,
		Args:    cobra.NoArgs,
		Example: `  ndnlp frag --mtu 1400 < data.bin
  ndnlp frag --config link.yml --verify < data.bin`,
		RunE: f.run,
	}

	cmd.Flags().IntVar(&f.mtu, "mtu", link.MaxFrameSize, "Link MTU")
	cmd.Flags().StringVar(&f.config, "config", "", "YAML file with link options")
	cmd.Flags().BoolVar(&f.isHex, "hex", false, "Input is hex encoded")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Reassemble the frames and compare with the input")
	return cmd
}

func (f *Frag) String() string {
	return "frag"
}

func (f *Frag) options(cmd *cobra.Command) (link.Options, error) {
	options := link.DefaultOptions()
	if f.config != "" {
		if err := toolutils.ReadYaml(&options, f.config); err != nil {
			return options, err
		}
	}
	if f.config == "" || cmd.Flags().Changed("mtu") {
		options.Mtu = f.mtu
	}
	return options, options.Validate()
}

func (f *Frag) run(cmd *cobra.Command, _ []string) error {
	options, err := f.options(cmd)
	if err != nil {
		return err
	}

	pkt, err := readInput(cmd.InOrStdin(), f.isHex)
	if err != nil {
		return err
	}

	local, remote := link.NewDummyPair(options.Mtu)
	sender, err := link.NewService(1, local, options)
	if err != nil {
		return err
	}
	receiver, err := link.NewService(2, remote, options)
	if err != nil {
		return err
	}

	var reassembled []byte
	receiver.OnPacket(func(p *link.NetPacket) {
		reassembled = p.Wire.Join()
	})

	if err := sender.Send(&link.NetPacket{Wire: enc.Wire{pkt}}); err != nil {
		return fmt.Errorf("unable to send packet: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, frame := range local.Sent() {
		fmt.Fprintln(out, enc.Buffer(frame).Hex())
	}

	status := toolutils.StatusPrinter{File: cmd.ErrOrStderr(), Padding: 12}
	counters := sender.Counters()
	status.Print("mtu", options.Mtu)
	status.Print("packets", counters.NOutPackets)
	status.Print("frames", counters.NOutFrames)

	if f.verify {
		ok := bytes.Equal(reassembled, pkt)
		status.Print("reassembled", ok)
		if !ok {
			log.Error(f, "Reassembled packet does not match input", "drops", receiver.Counters().NDrops)
			return errors.New("reassembly mismatch")
		}
	}
	return nil
}
