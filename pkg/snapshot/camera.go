package snapshot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kevmo314/go-vrcapture/pkg/config"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

const cameraSection = "camera"

// EnforceCameraSettings turns on the passthrough camera and sets the room
// view mode and style, writing only the values that differ.
func EnforceCameraSettings(s Settings, c config.CameraConfig, log *zerolog.Logger) error {
	enabled, err := s.Bool(cameraSection, "enableCamera")
	if err != nil {
		return fmt.Errorf("reading camera/enableCamera: %w", err)
	}
	if !enabled {
		log.Info().Msg("enabling camera")
		if err := s.SetBool(cameraSection, "enableCamera", true); err != nil {
			return fmt.Errorf("writing camera/enableCamera: %w", err)
		}
	}
	for _, kv := range []struct {
		key  string
		want int32
	}{
		{"roomView", c.RoomView},
		{"roomViewStyle", c.RoomViewStyle},
	} {
		got, err := s.Int32(cameraSection, kv.key)
		if err != nil {
			return fmt.Errorf("reading camera/%s: %w", kv.key, err)
		}
		if got == kv.want {
			continue
		}
		log.Info().Str("key", kv.key).Int32("from", got).Int32("to", kv.want).Msg("changing camera setting")
		if err := s.SetInt32(cameraSection, kv.key, kv.want); err != nil {
			return fmt.Errorf("writing camera/%s: %w", kv.key, err)
		}
	}
	return nil
}

// Cameras on a stereo passthrough headset.
var Cameras = []uint32{0, 1}

// IntrinsicsEntry is the calibration of one camera for one frame type.
// Failures are recorded in Error instead of aborting the collection.
type IntrinsicsEntry struct {
	Camera     uint32             `yaml:"camera"`
	FrameType  openvr.FrameType   `yaml:"frame_type"`
	Intrinsics *openvr.Intrinsics `yaml:"intrinsics,omitempty"`
	Projection *openvr.Matrix44   `yaml:"projection,omitempty"`
	Error      string             `yaml:"error,omitempty"`
}

// CollectIntrinsics queries intrinsics and projection for every camera and
// frame type of the headset.
func CollectIntrinsics(c Camera, near, far float32) []IntrinsicsEntry {
	var entries []IntrinsicsEntry
	for _, ft := range openvr.FrameTypes {
		for _, cam := range Cameras {
			e := IntrinsicsEntry{Camera: cam, FrameType: ft}
			var errs []string
			if in, err := c.CameraIntrinsics(openvr.HMD, cam, ft); err != nil {
				errs = append(errs, "intrinsics: "+err.Error())
			} else {
				e.Intrinsics = &in
			}
			if m, err := c.CameraProjection(openvr.HMD, cam, ft, near, far); err != nil {
				errs = append(errs, "projection: "+err.Error())
			} else {
				e.Projection = &m
			}
			e.Error = strings.Join(errs, "; ")
			entries = append(entries, e)
		}
	}
	return entries
}
