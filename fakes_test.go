package vrcapture

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) since(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events[n:]...)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeTexture struct {
	rec  *recorder
	name string
	desc gpu.TextureDesc
	// refs is shared with the resource the texture was queried from.
	refs *int
}

func (t *fakeTexture) Texture2D() (gpu.Texture2D, error) { return t, nil }

func (t *fakeTexture) Desc() gpu.TextureDesc { return t.desc }

func (t *fakeTexture) Release() {
	if t.refs != nil {
		*t.refs--
	}
	t.rec.add("release " + t.name)
}

// fakeResource is the compositor-owned mirror resource.
type fakeResource struct {
	rec      *recorder
	desc     gpu.TextureDesc
	queryErr error
	refs     int
}

func (r *fakeResource) Texture2D() (gpu.Texture2D, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	r.refs++
	return &fakeTexture{rec: r.rec, name: "texture", desc: r.desc, refs: &r.refs}, nil
}

func (r *fakeResource) Release() { r.rec.add("release resource") }

type fakeView struct {
	ptr uintptr
	res *fakeResource
}

func (v *fakeView) Ptr() uintptr { return v.ptr }

func (v *fakeView) Resource() (gpu.Resource, error) { return v.res, nil }

type fakeDevice struct {
	rec       *recorder
	resource  *fakeResource
	createErr error
	staging   []gpu.TextureDesc
}

func (d *fakeDevice) Ptr() uintptr { return 0xd3d }

func (d *fakeDevice) CreateTexture2D(desc gpu.TextureDesc) (gpu.Texture2D, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.staging = append(d.staging, desc)
	return &fakeTexture{rec: d.rec, name: "staging", desc: desc}, nil
}

func (d *fakeDevice) OpenShaderResourceView(ptr uintptr) (gpu.ShaderResourceView, error) {
	return &fakeView{ptr: ptr, res: d.resource}, nil
}

func (d *fakeDevice) Release() { d.rec.add("release device") }

type fakeContext struct {
	rec    *recorder
	mapped gpu.Mapped
	mapErr error
}

func (c *fakeContext) CopyResource(dst, src gpu.Resource) { c.rec.add("copy") }

func (c *fakeContext) Map(res gpu.Resource, subresource, mapType uint32) (gpu.Mapped, error) {
	if c.mapErr != nil {
		return gpu.Mapped{}, c.mapErr
	}
	c.rec.add("map")
	return c.mapped, nil
}

func (c *fakeContext) Unmap(res gpu.Resource, subresource uint32) { c.rec.add("unmap") }

func (c *fakeContext) Release() { c.rec.add("release context") }

type fakeCompositor struct {
	rec  *recorder
	err  error
	eyes []openvr.Eye
}

func (c *fakeCompositor) MirrorTextureD3D11(eye openvr.Eye, device uintptr) (uintptr, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.eyes = append(c.eyes, eye)
	return 0x5e5 + uintptr(eye), nil
}

func (c *fakeCompositor) ReleaseMirrorTextureD3D11(view uintptr) { c.rec.add("release view") }

// fakeGPU wires a device, context and compositor around one mirror resource
// of the given size.
type fakeGPU struct {
	rec        *recorder
	device     *fakeDevice
	context    *fakeContext
	resource   *fakeResource
	compositor *fakeCompositor
}

func newFakeGPU(width, height uint32) *fakeGPU {
	rec := &recorder{}
	res := &fakeResource{rec: rec, desc: gpu.TextureDesc{
		Width:       width,
		Height:      height,
		MipLevels:   1,
		ArraySize:   1,
		Format:      29, // DXGI_FORMAT_R8G8B8A8_UNORM_SRGB
		SampleCount: 1,
		BindFlags:   0x8,
		MiscFlags:   0x2,
	}}
	return &fakeGPU{
		rec:        rec,
		resource:   res,
		device:     &fakeDevice{rec: rec, resource: res},
		context:    &fakeContext{rec: rec},
		compositor: &fakeCompositor{rec: rec},
	}
}

func (f *fakeGPU) factory() (gpu.Device, gpu.Context, error) {
	return f.device, f.context, nil
}

type fakeClock struct {
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) NewTimer() backoff.Timer {
	return &fakeTimer{clock: c, ch: make(chan time.Time, 1)}
}

// fakeTimer fires immediately and advances its clock by the requested wait.
type fakeTimer struct {
	clock *fakeClock
	ch    chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.clock.now = t.clock.now.Add(d)
	t.clock.waits = append(t.clock.waits, d)
	t.ch <- t.clock.now
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

type fakeStream struct {
	acquireErr error
	size       openvr.FrameSize
	sizeErr    error
	// results holds the outcome of each fill attempt; the last entry
	// repeats once they run out.
	results []error
	header  openvr.FrameHeader

	acquired int
	bufLens  []int
}

func (s *fakeStream) AcquireVideoStreamingService(openvr.TrackedDeviceIndex) (openvr.CameraHandle, error) {
	if s.acquireErr != nil {
		return 0, s.acquireErr
	}
	s.acquired++
	return 7, nil
}

func (s *fakeStream) CameraFrameSize(openvr.TrackedDeviceIndex, openvr.FrameType) (openvr.FrameSize, error) {
	return s.size, s.sizeErr
}

func (s *fakeStream) VideoStreamFrameBuffer(_ openvr.CameraHandle, _ openvr.FrameType, buf []byte) (openvr.FrameHeader, error) {
	i := len(s.bufLens)
	s.bufLens = append(s.bufLens, len(buf))
	var err error
	if len(s.results) > 0 {
		err = s.results[min(i, len(s.results)-1)]
	}
	if err != nil {
		return openvr.FrameHeader{}, err
	}
	for j := range buf {
		buf[j] = byte(j)
	}
	return s.header, nil
}

func notReady() error {
	return openvr.NewCameraError(openvr.CameraErrorNoFrameAvailable, "")
}
