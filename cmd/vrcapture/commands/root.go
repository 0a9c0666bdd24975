package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kevmo314/go-vrcapture/pkg/config"
	"github.com/kevmo314/go-vrcapture/pkg/logger"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "vrcapture",
		Short: "Snapshot a VR headset's compositor mirror and passthrough camera",
		Long: `vrcapture takes a one-shot diagnostic snapshot of a SteamVR headset.

It writes both eyes of the compositor mirror, one raw passthrough camera
frame, the camera intrinsics and the headset's lighthouse calibration into
a timestamped directory.

Running vrcapture without a subcommand is the same as "vrcapture capture".`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runCapture,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "directory snapshots are written to (default \"dumps\")")

	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	bindCaptureFlags(cmd)
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
