//go:build !windows

package openvr

func vrInit(ApplicationType) error { return ErrUnsupported }

func vrShutdown() {}

type System struct{}

func NewSystem(ctx *Context) (*System, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (s *System) StringProperty(TrackedDeviceIndex, TrackedDeviceProperty) (string, error) {
	return "", ErrUnsupported
}

type Compositor struct{}

func NewCompositor(ctx *Context) (*Compositor, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (c *Compositor) MirrorTextureD3D11(Eye, uintptr) (uintptr, error) {
	return 0, ErrUnsupported
}

func (c *Compositor) ReleaseMirrorTextureD3D11(uintptr) {}

type TrackedCamera struct{}

func NewTrackedCamera(ctx *Context) (*TrackedCamera, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (c *TrackedCamera) HasCamera(TrackedDeviceIndex) (bool, error) { return false, ErrUnsupported }

func (c *TrackedCamera) CameraFrameSize(TrackedDeviceIndex, FrameType) (FrameSize, error) {
	return FrameSize{}, ErrUnsupported
}

func (c *TrackedCamera) CameraIntrinsics(TrackedDeviceIndex, uint32, FrameType) (Intrinsics, error) {
	return Intrinsics{}, ErrUnsupported
}

func (c *TrackedCamera) CameraProjection(TrackedDeviceIndex, uint32, FrameType, float32, float32) (Matrix44, error) {
	return Matrix44{}, ErrUnsupported
}

func (c *TrackedCamera) AcquireVideoStreamingService(TrackedDeviceIndex) (CameraHandle, error) {
	return 0, ErrUnsupported
}

func (c *TrackedCamera) ReleaseVideoStreamingService(CameraHandle) error { return ErrUnsupported }

func (c *TrackedCamera) VideoStreamFrameBuffer(CameraHandle, FrameType, []byte) (FrameHeader, error) {
	return FrameHeader{}, ErrUnsupported
}

type Settings struct{}

func NewSettings(ctx *Context) (*Settings, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (s *Settings) Bool(string, string) (bool, error) { return false, ErrUnsupported }

func (s *Settings) SetBool(string, string, bool) error { return ErrUnsupported }

func (s *Settings) Int32(string, string) (int32, error) { return 0, ErrUnsupported }

func (s *Settings) SetInt32(string, string, int32) error { return ErrUnsupported }
