package tools

import "github.com/spf13/cobra"

// Cmds returns the NDNLPv2 tools.
func Cmds() []*cobra.Command {
	return []*cobra.Command{
		CmdDecode(),
		CmdEncode(),
		CmdFrag(),
	}
}
