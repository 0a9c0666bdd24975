package commands

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"

	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
	"github.com/kevmo314/go-vrcapture/pkg/snapshot"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse the headset's camera details interactively",
	Long: `Open a terminal UI showing the headset serial, camera settings, frame sizes
and intrinsics for every frame type. Snapshots can be taken from the UI.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return fmt.Errorf("failed to open headset session: %w", err)
	}
	defer s.Close()

	report, err := s.runner.Probe()
	if err != nil {
		return fmt.Errorf("failed to probe headset: %w", err)
	}

	app := tview.NewApplication()

	logText := tview.NewTextView()
	logText.SetDynamicColors(true).SetMaxLines(10).SetBorder(true).SetTitle("Log")
	logText.SetChangedFunc(func() { app.Draw() })
	logger.InitWriter(tview.ANSIWriter(logText), cfg.LogLevel, true)
	defer logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.WithComponent("inspect")

	// Deferred after the session and logger so the capture job is gone
	// before either is torn down.
	jobs := newBackground(cmd.Context())
	defer jobs.Stop()

	details := tview.NewTextView()
	details.SetBorder(true).SetTitle("Details")

	preview := tview.NewImage()
	preview.SetColors(256).SetDithering(tview.DitheringNone).SetBorder(true).SetTitle("Camera")

	headset := tview.NewList()
	headset.SetBorder(true).SetTitle("Headset")
	headset.AddItem("Serial", report.Serial, 0, nil)
	headset.AddItem("Model", report.Model, 0, nil)
	headset.AddItem("Calibration", report.CalibrationPath, 0, func() {
		details.SetText(yamlText(map[string]any{
			"path":  report.CalibrationPath,
			"found": report.CalibrationFound,
		}))
	})

	frameTypes := tview.NewList()
	frameTypes.SetBorder(true).SetTitle("Frame Types")
	for _, fs := range report.FrameSizes {
		frameTypes.AddItem(fs.FrameType.String(), frameSizeSubtitle(fs), 0, func() {
			details.SetText(yamlText(entriesFor(report.Intrinsics, fs.FrameType)))
		})
	}
	if !report.HasCamera {
		frameTypes.AddItem("No camera", "the headset reports no tracked camera", 0, nil)
	}

	settings := tview.NewList()
	settings.SetBorder(true).SetTitle("Camera Settings")

	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(frameTypes, 0, 1, false).
		AddItem(settings, 0, 1, false)

	if report.Settings != nil {
		cs := *report.Settings
		settings.AddItem("enableCamera", strconv.FormatBool(cs.EnableCamera), 0, func() {
			value := !cs.EnableCamera
			if err := s.runner.Settings.SetBool("camera", "enableCamera", value); err != nil {
				log.Error().Err(err).Msg("failed to write camera/enableCamera")
				return
			}
			cs.EnableCamera = value
			settings.SetItemText(0, "enableCamera", strconv.FormatBool(value))
		})
		for i, key := range []string{"roomView", "roomViewStyle"} {
			current := &cs.RoomView
			if key == "roomViewStyle" {
				current = &cs.RoomViewStyle
			}
			settings.AddItem(key, strconv.Itoa(int(*current)), 0, func() {
				input := tview.NewInputField()
				input.SetLabel(fmt.Sprintf("New %s: ", key)).
					SetFieldWidth(6).
					SetAcceptanceFunc(tview.InputFieldInteger).
					SetDoneFunc(func(k tcell.Key) {
						defer func() {
							column.RemoveItem(input)
							app.SetFocus(settings)
						}()
						if k != tcell.KeyEnter {
							return
						}
						value, err := strconv.ParseInt(input.GetText(), 10, 32)
						if err != nil {
							log.Error().Err(err).Msg("invalid value")
							return
						}
						if err := s.runner.Settings.SetInt32("camera", key, int32(value)); err != nil {
							log.Error().Err(err).Str("key", key).Msg("failed to write camera setting")
							return
						}
						*current = int32(value)
						settings.SetItemText(i+1, key, strconv.Itoa(int(value)))
					})
				column.AddItem(input, 1, 0, false)
				app.SetFocus(input)
			})
		}
	} else {
		settings.AddItem("Unavailable", report.SettingsError, 0, nil)
	}

	actions := tview.NewList().ShowSecondaryText(false)
	actions.SetBorder(true).SetTitle("Actions")
	actions.AddItem("Capture snapshot", "", 'c', func() {
		started := jobs.Go(func(ctx context.Context) {
			snap, err := s.runner.Run(ctx)
			if err != nil {
				log.Error().Err(err).Msg("capture failed")
				return
			}
			dir, err := snapshot.Save(cfg.OutputDir, snap)
			if err != nil {
				log.Error().Err(err).Msg("save failed")
				return
			}
			log.Info().Str("dir", dir).Msg("snapshot saved")
			if ctx.Err() != nil {
				return
			}
			thumb := resize(snap.CameraImage, 64)
			app.QueueUpdateDraw(func() { preview.SetImage(thumb) })
		})
		if !started {
			log.Warn().Msg("a capture is already running")
		}
	})
	actions.AddItem("Quit", "", 'q', app.Stop)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(headset, 0, 1, false).
		AddItem(actions, 0, 1, true)

	flex := tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(column, 0, 1, false).
		AddItem(details, 0, 2, false).
		AddItem(preview, 0, 2, false)

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() != tcell.KeyTab {
			return ev
		}
		switch {
		case actions.HasFocus():
			app.SetFocus(headset)
		case headset.HasFocus():
			app.SetFocus(frameTypes)
		case frameTypes.HasFocus():
			app.SetFocus(settings)
		case settings.HasFocus():
			app.SetFocus(actions)
		default:
			return ev
		}
		return nil
	})

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(flex, 0, 1, true).
		AddItem(logText, 10, 0, false)
	return app.SetRoot(root, true).Run()
}

func frameSizeSubtitle(fs snapshot.FrameSizeEntry) string {
	if fs.Error != "" {
		return fs.Error
	}
	return fmt.Sprintf("%dx%d, %d bytes", fs.Size.Width, fs.Size.Height, fs.Size.FrameBufferSize)
}

func entriesFor(entries []snapshot.IntrinsicsEntry, ft openvr.FrameType) []snapshot.IntrinsicsEntry {
	var out []snapshot.IntrinsicsEntry
	for _, e := range entries {
		if e.FrameType == ft {
			out = append(out, e)
		}
	}
	return out
}

func yamlText(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func resize(img image.Image, w int) *image.RGBA {
	h := img.Bounds().Dy() * w / max(img.Bounds().Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, max(h, 1)))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
