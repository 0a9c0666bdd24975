package commands

import (
	vrcapture "github.com/kevmo314/go-vrcapture"
	"github.com/kevmo314/go-vrcapture/pkg/config"
	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
	"github.com/kevmo314/go-vrcapture/pkg/snapshot"
)

// session is an open D3D11 device plus an OpenVR session and the runner
// built on top of them.
type session struct {
	device *vrcapture.DeviceContext
	vr     *openvr.Context
	runner *snapshot.Runner
}

func openSession(cfg *config.Config) (_ *session, err error) {
	s := &session{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if s.device, err = vrcapture.NewDeviceContext(gpu.CreateHardwareDevice); err != nil {
		return nil, err
	}
	if s.vr, err = openvr.Init(openvr.ApplicationOther); err != nil {
		return nil, err
	}

	system, err := openvr.NewSystem(s.vr)
	if err != nil {
		return nil, err
	}
	compositor, err := openvr.NewCompositor(s.vr)
	if err != nil {
		return nil, err
	}
	camera, err := openvr.NewTrackedCamera(s.vr)
	if err != nil {
		return nil, err
	}
	settings, err := openvr.NewSettings(s.vr)
	if err != nil {
		return nil, err
	}

	s.runner = &snapshot.Runner{
		Config:     cfg,
		Device:     s.device,
		Compositor: compositor,
		Camera:     camera,
		Settings:   settings,
		System:     system,
	}
	return s, nil
}

func (s *session) Close() {
	if s.vr != nil {
		s.vr.Shutdown()
	}
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			logger.WithComponent("device").Warn().Err(err).Msg("failed to release d3d11 device")
		}
	}
}
