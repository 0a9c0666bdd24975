package snapshot

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

// eyeTexture is a solid 2x2 mirror eye.
type eyeTexture struct {
	released *[]string
	name     string
	fill     byte
}

func (t *eyeTexture) Texture2D() (gpu.Texture2D, error) { return t, nil }

func (t *eyeTexture) Desc() gpu.TextureDesc {
	return gpu.TextureDesc{Width: 2, Height: 2, MipLevels: 1, ArraySize: 1, SampleCount: 1}
}

func (t *eyeTexture) Release() { *t.released = append(*t.released, t.name) }

type eyeView struct{ tex *eyeTexture }

func (v eyeView) Ptr() uintptr                    { return 1 }
func (v eyeView) Resource() (gpu.Resource, error) { return v.tex, nil }

type stubDevice struct {
	released []string
	// last is the fill value of the most recently opened eye.
	last byte
}

func (d *stubDevice) Ptr() uintptr { return 0xd3d }

func (d *stubDevice) CreateTexture2D(desc gpu.TextureDesc) (gpu.Texture2D, error) {
	return &eyeTexture{released: &d.released, name: "staging", fill: d.last}, nil
}

func (d *stubDevice) OpenShaderResourceView(ptr uintptr) (gpu.ShaderResourceView, error) {
	d.last = byte(ptr)
	return eyeView{tex: &eyeTexture{released: &d.released, name: "resource", fill: byte(ptr)}}, nil
}

func (d *stubDevice) Release() {}

type stubContext struct{}

func (stubContext) CopyResource(dst, src gpu.Resource) {}

func (stubContext) Map(res gpu.Resource, subresource, mapType uint32) (gpu.Mapped, error) {
	t := res.(*eyeTexture)
	data := make([]byte, 16)
	for i := range data {
		data[i] = t.fill
	}
	return gpu.Mapped{Data: data, RowPitch: 8}, nil
}

func (stubContext) Unmap(res gpu.Resource, subresource uint32) {}

func (stubContext) Release() {}

type stubCompositor struct {
	views    []uintptr
	released []uintptr
}

// the view pointer doubles as the eye's fill byte
func (c *stubCompositor) MirrorTextureD3D11(eye openvr.Eye, device uintptr) (uintptr, error) {
	v := uintptr(0x40 + eye)
	c.views = append(c.views, v)
	return v, nil
}

func (c *stubCompositor) ReleaseMirrorTextureD3D11(view uintptr) {
	c.released = append(c.released, view)
}

type stubCamera struct {
	has        bool
	notReady   int
	fills      int
	intrinsics map[uint32]error
	size       openvr.FrameSize
	acquireErr error
}

func (c *stubCamera) HasCamera(openvr.TrackedDeviceIndex) (bool, error) { return c.has, nil }

func (c *stubCamera) CameraIntrinsics(_ openvr.TrackedDeviceIndex, cam uint32, ft openvr.FrameType) (openvr.Intrinsics, error) {
	if err := c.intrinsics[cam]; err != nil {
		return openvr.Intrinsics{}, err
	}
	return openvr.Intrinsics{
		FocalLength: openvr.Vector2{X: 400 + float32(ft), Y: 400},
		Center:      openvr.Vector2{X: 320, Y: 240},
	}, nil
}

func (c *stubCamera) CameraProjection(_ openvr.TrackedDeviceIndex, cam uint32, _ openvr.FrameType, near, far float32) (openvr.Matrix44, error) {
	var m openvr.Matrix44
	m[2][2] = -(far + near) / (far - near)
	return m, nil
}

func (c *stubCamera) AcquireVideoStreamingService(openvr.TrackedDeviceIndex) (openvr.CameraHandle, error) {
	return 1, c.acquireErr
}

func (c *stubCamera) CameraFrameSize(openvr.TrackedDeviceIndex, openvr.FrameType) (openvr.FrameSize, error) {
	return c.size, openvr.NewCameraError(openvr.CameraErrorInvalidFrameBufferSize, "")
}

func (c *stubCamera) VideoStreamFrameBuffer(_ openvr.CameraHandle, ft openvr.FrameType, buf []byte) (openvr.FrameHeader, error) {
	c.fills++
	if c.fills <= c.notReady {
		return openvr.FrameHeader{}, openvr.NewCameraError(openvr.CameraErrorNoFrameAvailable, "")
	}
	for i := range buf {
		buf[i] = 0x80
	}
	return openvr.FrameHeader{
		FrameType:     ft,
		Width:         c.size.Width,
		Height:        c.size.Height,
		BytesPerPixel: 4,
		FrameSequence: uint32(c.fills),
	}, nil
}

type stubSettings struct {
	bools  map[string]bool
	ints   map[string]int32
	writes []string
	err    error
}

func (s *stubSettings) Bool(section, key string) (bool, error) {
	return s.bools[section+"/"+key], s.err
}

func (s *stubSettings) SetBool(section, key string, value bool) error {
	s.bools[section+"/"+key] = value
	s.writes = append(s.writes, section+"/"+key)
	return nil
}

func (s *stubSettings) Int32(section, key string) (int32, error) {
	return s.ints[section+"/"+key], s.err
}

func (s *stubSettings) SetInt32(section, key string, value int32) error {
	s.ints[section+"/"+key] = value
	s.writes = append(s.writes, section+"/"+key)
	return nil
}

type stubSystem struct {
	props map[openvr.TrackedDeviceProperty]string
}

func (s stubSystem) StringProperty(_ openvr.TrackedDeviceIndex, prop openvr.TrackedDeviceProperty) (string, error) {
	v, ok := s.props[prop]
	if !ok {
		return "", openvr.NewPropertyError(openvr.PropertyUnknownProperty)
	}
	return v, nil
}

type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time { return c.now }

func (c *instantClock) NewTimer() backoff.Timer { return &instantTimer{clock: c, ch: make(chan time.Time, 1)} }

type instantTimer struct {
	clock *instantClock
	ch    chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.clock.now = t.clock.now.Add(d)
	t.ch <- t.clock.now
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.ch }

var errUnavailable = errors.New("unavailable")
