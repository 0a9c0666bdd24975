package snapshot

import (
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

type CameraSettings struct {
	EnableCamera  bool  `yaml:"enable_camera"`
	RoomView      int32 `yaml:"room_view"`
	RoomViewStyle int32 `yaml:"room_view_style"`
}

type FrameSizeEntry struct {
	FrameType openvr.FrameType `yaml:"frame_type"`
	Size      openvr.FrameSize `yaml:"size"`
	Error     string           `yaml:"error,omitempty"`
}

// Report describes the headset without capturing anything.
type Report struct {
	Serial           string            `yaml:"serial"`
	Model            string            `yaml:"model"`
	HasCamera        bool              `yaml:"has_camera"`
	Settings         *CameraSettings   `yaml:"settings,omitempty"`
	SettingsError    string            `yaml:"settings_error,omitempty"`
	FrameSizes       []FrameSizeEntry  `yaml:"frame_sizes"`
	Intrinsics       []IntrinsicsEntry `yaml:"intrinsics"`
	CalibrationPath  string            `yaml:"calibration_path"`
	CalibrationFound bool              `yaml:"calibration_found"`
}

// Probe gathers a Report. Only a failure to identify the headset is
// returned as an error; everything else is recorded in the report.
func (r *Runner) Probe() (*Report, error) {
	serial, err := r.System.StringProperty(openvr.HMD, openvr.PropSerialNumberString)
	if err != nil {
		return nil, err
	}
	rep := &Report{Serial: serial}
	if model, err := r.System.StringProperty(openvr.HMD, openvr.PropModelNumberString); err == nil {
		rep.Model = model
	}

	cal := r.calibration(serial)
	rep.CalibrationPath, rep.CalibrationFound = cal.Path, cal.Found

	if s, err := readCameraSettings(r.Settings); err != nil {
		rep.SettingsError = err.Error()
	} else {
		rep.Settings = s
	}

	has, err := r.Camera.HasCamera(openvr.HMD)
	if err != nil {
		return nil, err
	}
	rep.HasCamera = has
	if !has {
		return rep, nil
	}

	for _, ft := range openvr.FrameTypes {
		e := FrameSizeEntry{FrameType: ft}
		size, err := r.Camera.CameraFrameSize(openvr.HMD, ft)
		if err != nil && !openvr.IsBufferTooSmall(err) {
			e.Error = err.Error()
		}
		e.Size = size
		rep.FrameSizes = append(rep.FrameSizes, e)
	}
	rep.Intrinsics = CollectIntrinsics(r.Camera, r.Config.Camera.NearZ, r.Config.Camera.FarZ)
	return rep, nil
}

func readCameraSettings(s Settings) (*CameraSettings, error) {
	var c CameraSettings
	var err error
	if c.EnableCamera, err = s.Bool(cameraSection, "enableCamera"); err != nil {
		return nil, err
	}
	if c.RoomView, err = s.Int32(cameraSection, "roomView"); err != nil {
		return nil, err
	}
	if c.RoomViewStyle, err = s.Int32(cameraSection, "roomViewStyle"); err != nil {
		return nil, err
	}
	return &c, nil
}
