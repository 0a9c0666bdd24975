package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/snapshot"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Take a snapshot of the headset",
	Long: `Capture both mirror eyes and one camera frame and save them together with
the camera intrinsics and lighthouse calibration.`,
	Example: `  # Capture into ./dumps
  vrcapture capture

  # Capture an undistorted frame with a longer timeout
  vrcapture capture --frame-type undistorted --poll-deadline 10s`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	for _, cmd := range []*cobra.Command{rootCmd, captureCmd} {
		cmd.Flags().String("frame-type", "", "camera frame type (distorted, undistorted, maximum-undistorted)")
		cmd.Flags().Duration("warm-up", 0, "wait before polling the camera (default 1s)")
		cmd.Flags().Duration("poll-deadline", 0, "give up on the camera after this long (default 5s)")
		cmd.Flags().Bool("no-enforce-settings", false, "leave the SteamVR camera settings untouched")
	}
}

// bindCaptureFlags binds the flags of whichever command is running so that
// the root and capture commands share viper keys.
func bindCaptureFlags(cmd *cobra.Command) {
	for key, name := range map[string]string{
		"capture.frame_type":    "frame-type",
		"capture.warm_up":       "warm-up",
		"capture.poll_deadline": "poll-deadline",
	} {
		if f := cmd.Flags().Lookup(name); f != nil {
			v.BindPFlag(key, f)
		}
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	if skip, _ := cmd.Flags().GetBool("no-enforce-settings"); skip {
		cfg.Camera.EnforceSettings = false
	}
	log := logger.WithComponent("capture")

	s, err := openSession(cfg)
	if err != nil {
		return fmt.Errorf("failed to open headset session: %w", err)
	}
	defer s.Close()

	snap, err := s.runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	dir, err := snapshot.Save(cfg.OutputDir, snap)
	if err != nil {
		return err
	}

	log.Info().
		Str("id", snap.ID.String()).
		Str("dir", dir).
		Str("serial", snap.Serial).
		Msg("snapshot saved")
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
