package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"vidtrack/internal/version"
	"vidtrack/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   version.APP,
	Short: "vidtrack runs person-tracking analysis jobs on uploaded videos",
	Long: `Upload videos, track the people in them and browse the results.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(notifyCommand)
	rootCmd.AddCommand(tokenCommand)
	rootCmd.AddCommand(schemaCommand)
}
