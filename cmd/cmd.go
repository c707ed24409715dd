package cmd

import (
	"fmt"

	"github.com/named-data/ndnlp/std/log"
	"github.com/named-data/ndnlp/std/utils"
	"github.com/named-data/ndnlp/tools"
	"github.com/spf13/cobra"
)

const banner = `
             _       _
  _ __   __| |_ __ | |_ __
 | '_ \ / _  | '_ \| | '_ \
 | | | | (_| | | | | | |_) |
 |_| |_|\__,_|_| |_|_| .__/
                     |_|

NDN Link Protocol Tools
`

var CmdNdnlp = &cobra.Command{
	Use:     "ndnlp",
	Short:   "NDN Link Protocol Tools",
	Long:    banner[1:],
	Version: utils.Version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		if logFormat != "text" && logFormat != "json" {
			return fmt.Errorf("invalid log format: %q", logFormat)
		}

		logger := log.New(cmd.ErrOrStderr(), logFormat)
		logger.SetLevel(level)
		log.SetDefault(logger)
		return nil
	},
	SilenceUsage: true,
}

var (
	logLevel  string
	logFormat string
)

func init() {
	cobra.EnableCommandSorting = false
	CmdNdnlp.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdNdnlp.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdNdnlp.PersistentFlags().Lookup("help").Hidden = true
	CmdNdnlp.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	CmdNdnlp.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	CmdNdnlp.AddGroup(&cobra.Group{ID: "tools", Title: "Packet Tools"})
	for _, sub := range tools.Cmds() {
		CmdNdnlp.AddCommand(sub)
	}
}
