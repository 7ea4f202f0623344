package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildbarn/bb-ed2k/pkg/configuration"
	"github.com/buildbarn/bb-ed2k/pkg/digest"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configurationPath string
	logLevelStr       string

	applicationConfiguration *configuration.ApplicationConfiguration
)

var rootCmd = &cobra.Command{
	Use:           "bb_ed2k",
	Short:         "Computes and verifies ed2k hashes of files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := configuration.GetApplicationConfiguration(configurationPath)
		if err != nil {
			return err
		}
		// The command line flag takes precedence over the
		// configuration file.
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevelStr
		}
		level, err := log.ParseLevel(c.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		applicationConfiguration = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configurationPath, "config", "", "path to a Jsonnet configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelStr, "log-level", log.InfoLevel.String(), "log level")

	rootCmd.AddCommand(hashCmd, verifyCmd, selftestCmd, serveCmd)
}

// newBlockDigestFunc returns the MD4 block digest function, instrumented
// with Prometheus metrics.
func newBlockDigestFunc() digest.BlockDigestFunc {
	return digest.NewMetricsBlockDigestFunc(digest.MD4BlockDigest, "md4")
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		log.WithError(err).Fatal("Command failed")
	}
}
