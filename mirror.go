package vrcapture

import (
	"fmt"
	"image"
	"sync"

	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/logger"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

// MirrorSource hands out the compositor's per-eye mirror views.
// *openvr.Compositor implements it.
type MirrorSource interface {
	MirrorTextureD3D11(eye openvr.Eye, device uintptr) (uintptr, error)
	ReleaseMirrorTextureD3D11(view uintptr)
}

// MirrorTexture is one eye of the compositor mirror together with the
// staging texture used to read it back. It keeps its DeviceContext open
// until Close.
type MirrorTexture struct {
	eye openvr.Eye
	src MirrorSource
	dc  *DeviceContext

	view     uintptr
	resource gpu.Resource
	staging  gpu.Texture2D
	width    uint32
	height   uint32

	mu     sync.Mutex
	closed bool
}

// AcquireMirrorTexture opens the mirror view for eye on the device in dc and
// creates a matching staging texture.
func AcquireMirrorTexture(src MirrorSource, eye openvr.Eye, dc *DeviceContext) (*MirrorTexture, error) {
	if err := dc.borrow(); err != nil {
		return nil, err
	}
	m := &MirrorTexture{eye: eye, src: src, dc: dc}
	if err := dc.do(m.open); err != nil {
		m.teardown()
		dc.unborrow()
		return nil, err
	}
	logger.WithComponent("mirror").Debug().
		Stringer("eye", eye).
		Uint32("width", m.width).
		Uint32("height", m.height).
		Msg("mirror texture acquired")
	return m, nil
}

func (m *MirrorTexture) open(device gpu.Device, _ gpu.Context) error {
	view, err := m.src.MirrorTextureD3D11(m.eye, device.Ptr())
	if err != nil {
		return fmt.Errorf("%s eye mirror: %w", m.eye, err)
	}
	m.view = view

	srv, err := device.OpenShaderResourceView(view)
	if err != nil {
		return m.fail("open shader resource view", err)
	}
	res, err := srv.Resource()
	if err != nil {
		return m.fail("get resource", err)
	}
	m.resource = res

	tex, err := res.Texture2D()
	if err != nil {
		return m.fail("query texture", err)
	}
	desc := tex.Desc()
	tex.Release()

	staging, err := device.CreateTexture2D(desc.Staging())
	if err != nil {
		return m.fail("create staging texture", err)
	}
	m.staging = staging
	m.width, m.height = desc.Width, desc.Height
	return nil
}

func (m *MirrorTexture) fail(op string, err error) error {
	return &StagingResourceError{Eye: m.eye, Op: op, Err: err}
}

func (m *MirrorTexture) Eye() openvr.Eye { return m.eye }

func (m *MirrorTexture) Size() (width, height int) {
	return int(m.width), int(m.height)
}

// Capture copies the current mirror contents into a new image.
func (m *MirrorTexture) Capture() (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrMirrorClosed
	}
	return WithContext(m.dc, m.capture)
}

func (m *MirrorTexture) capture(ctx gpu.Context) (*image.RGBA, error) {
	live, err := m.resource.Texture2D()
	if err != nil {
		return nil, m.fail("query texture", err)
	}
	defer live.Release()

	if desc := live.Desc(); desc.Width != m.width || desc.Height != m.height {
		return nil, m.fail("check size", fmt.Errorf("mirror is now %dx%d, staging is %dx%d", desc.Width, desc.Height, m.width, m.height))
	}

	ctx.CopyResource(m.staging, live)
	mapped, err := ctx.Map(m.staging, 0, gpu.MapReadWrite)
	if err != nil {
		return nil, m.fail("map staging texture", err)
	}
	defer ctx.Unmap(m.staging, 0)

	img := image.NewRGBA(image.Rect(0, 0, int(m.width), int(m.height)))
	if err := copyRows(img, mapped); err != nil {
		return nil, m.fail("read staging texture", err)
	}
	return img, nil
}

// copyRows copies a mapped RGBA8 surface whose rows are RowPitch bytes apart.
func copyRows(dst *image.RGBA, src gpu.Mapped) error {
	rowBytes := dst.Rect.Dx() * 4
	rows := dst.Rect.Dy()
	pitch := int(src.RowPitch)
	if rows == 0 {
		return nil
	}
	if pitch < rowBytes {
		return fmt.Errorf("row pitch %d is shorter than a row of %d bytes", pitch, rowBytes)
	}
	if need := (rows-1)*pitch + rowBytes; len(src.Data) < need {
		return fmt.Errorf("mapped %d bytes, need %d", len(src.Data), need)
	}
	for y := 0; y < rows; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowBytes], src.Data[y*pitch:y*pitch+rowBytes])
	}
	return nil
}

// Close releases the staging texture, the mirror resource and finally the
// compositor view.
func (m *MirrorTexture) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.teardown()
	m.dc.unborrow()
	logger.WithComponent("mirror").Debug().Stringer("eye", m.eye).Msg("mirror texture released")
	return nil
}

func (m *MirrorTexture) teardown() {
	m.dc.mu.Lock()
	if m.staging != nil {
		m.staging.Release()
		m.staging = nil
	}
	if m.resource != nil {
		m.resource.Release()
		m.resource = nil
	}
	m.dc.mu.Unlock()
	if m.view != 0 {
		m.src.ReleaseMirrorTextureD3D11(m.view)
		m.view = 0
	}
}
