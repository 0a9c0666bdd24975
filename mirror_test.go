package vrcapture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-vrcapture/pkg/gpu"
	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

func acquire(t *testing.T, f *fakeGPU, eye openvr.Eye) (*DeviceContext, *MirrorTexture) {
	t.Helper()
	dc, err := NewDeviceContext(f.factory)
	require.NoError(t, err)
	m, err := AcquireMirrorTexture(f.compositor, eye, dc)
	require.NoError(t, err)
	return dc, m
}

func TestAcquireMirrorTextureStagingDesc(t *testing.T) {
	f := newFakeGPU(1852, 2056)
	_, m := acquire(t, f, openvr.EyeRight)
	defer m.Close()

	require.Len(t, f.device.staging, 1)
	desc := f.device.staging[0]
	assert.Equal(t, uint32(1852), desc.Width)
	assert.Equal(t, uint32(2056), desc.Height)
	assert.Equal(t, uint32(gpu.FormatR8G8B8A8UNorm), desc.Format)
	assert.Equal(t, uint32(gpu.UsageStaging), desc.Usage)
	assert.Equal(t, uint32(gpu.CPUAccessRead|gpu.CPUAccessWrite), desc.CPUAccessFlags)
	assert.Zero(t, desc.BindFlags)
	assert.Zero(t, desc.MiscFlags)

	assert.Equal(t, []openvr.Eye{openvr.EyeRight}, f.compositor.eyes)
	assert.Equal(t, openvr.EyeRight, m.Eye())
	w, h := m.Size()
	assert.Equal(t, 1852, w)
	assert.Equal(t, 2056, h)
	assert.Zero(t, f.resource.refs, "temporary texture interface leaked")
}

func TestMirrorTextureCloseOrder(t *testing.T) {
	f := newFakeGPU(4, 4)
	dc, m := acquire(t, f, openvr.EyeLeft)

	n := f.rec.len()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, []string{"release staging", "release resource", "release view"}, f.rec.since(n))

	_, err := m.Capture()
	assert.ErrorIs(t, err, ErrMirrorClosed)
	assert.NoError(t, dc.Close())
}

func TestMirrorTextureCapture(t *testing.T) {
	f := newFakeGPU(2, 2)
	// rows are 8 bytes of pixels followed by 4 bytes of padding
	f.context.mapped = gpu.Mapped{
		RowPitch: 12,
		Data: []byte{
			1, 2, 3, 4, 5, 6, 7, 8, 0xee, 0xee, 0xee, 0xee,
			9, 10, 11, 12, 13, 14, 15, 16, 0xee, 0xee, 0xee, 0xee,
		},
	}
	dc, m := acquire(t, f, openvr.EyeLeft)
	defer dc.Close()
	defer m.Close()

	n := f.rec.len()
	img, err := m.Capture()
	require.NoError(t, err)
	assert.Equal(t, 2, img.Rect.Dx())
	assert.Equal(t, 2, img.Rect.Dy())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, img.Pix)
	assert.Equal(t, []string{"copy", "map", "unmap", "release texture"}, f.rec.since(n))
	assert.Zero(t, f.resource.refs)
}

func TestMirrorTextureCaptureShortMapping(t *testing.T) {
	f := newFakeGPU(2, 2)
	f.context.mapped = gpu.Mapped{RowPitch: 8, Data: make([]byte, 12)}
	dc, m := acquire(t, f, openvr.EyeLeft)
	defer dc.Close()
	defer m.Close()

	n := f.rec.len()
	img, err := m.Capture()
	assert.Nil(t, img)
	var stagingErr *StagingResourceError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "read staging texture", stagingErr.Op)
	assert.Contains(t, f.rec.since(n), "unmap")
}

func TestMirrorTextureCaptureMapFailure(t *testing.T) {
	f := newFakeGPU(2, 2)
	f.context.mapErr = &gpu.Error{Op: "Map", HRESULT: -2005270523}
	dc, m := acquire(t, f, openvr.EyeLeft)
	defer dc.Close()
	defer m.Close()

	_, err := m.Capture()
	var stagingErr *StagingResourceError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "map staging texture", stagingErr.Op)
	var hrErr *gpu.Error
	assert.ErrorAs(t, err, &hrErr)
}

func TestMirrorTextureResized(t *testing.T) {
	f := newFakeGPU(2, 2)
	dc, m := acquire(t, f, openvr.EyeLeft)
	defer dc.Close()
	defer m.Close()

	f.resource.desc.Width = 4
	_, err := m.Capture()
	var stagingErr *StagingResourceError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "check size", stagingErr.Op)
	assert.Zero(t, f.resource.refs)
}

func TestAcquireMirrorTextureStagingFailure(t *testing.T) {
	f := newFakeGPU(2, 2)
	f.device.createErr = &gpu.Error{Op: "CreateTexture2D", HRESULT: -2147024882}
	dc, err := NewDeviceContext(f.factory)
	require.NoError(t, err)

	n := f.rec.len()
	m, err := AcquireMirrorTexture(f.compositor, openvr.EyeRight, dc)
	assert.Nil(t, m)

	var stagingErr *StagingResourceError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, openvr.EyeRight, stagingErr.Eye)
	assert.Equal(t, "create staging texture", stagingErr.Op)
	assert.Equal(t, []string{"release texture", "release resource", "release view"}, f.rec.since(n))

	// the failed texture must not keep the device borrowed
	assert.NoError(t, dc.Close())
}

func TestAcquireMirrorTextureQueryFailure(t *testing.T) {
	f := newFakeGPU(2, 2)
	f.resource.queryErr = errors.New("E_NOINTERFACE")
	dc, err := NewDeviceContext(f.factory)
	require.NoError(t, err)

	n := f.rec.len()
	_, err = AcquireMirrorTexture(f.compositor, openvr.EyeLeft, dc)
	var stagingErr *StagingResourceError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "query texture", stagingErr.Op)
	assert.Equal(t, []string{"release resource", "release view"}, f.rec.since(n))
	assert.NoError(t, dc.Close())
}

func TestAcquireMirrorTextureCompositorError(t *testing.T) {
	f := newFakeGPU(2, 2)
	f.compositor.err = openvr.NewCompositorError(9999)
	dc, err := NewDeviceContext(f.factory)
	require.NoError(t, err)
	defer dc.Close()

	n := f.rec.len()
	_, err = AcquireMirrorTexture(f.compositor, openvr.EyeLeft, dc)
	var compErr *openvr.CompositorError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "VRCompositorError_UnknownError", compErr.Name)
	assert.Empty(t, f.rec.since(n), "no view was handed out, nothing to release")
}

func TestAcquireMirrorTextureClosedDevice(t *testing.T) {
	f := newFakeGPU(2, 2)
	dc, err := NewDeviceContext(f.factory)
	require.NoError(t, err)
	require.NoError(t, dc.Close())

	_, err = AcquireMirrorTexture(f.compositor, openvr.EyeLeft, dc)
	assert.ErrorIs(t, err, ErrDeviceClosed)
	assert.Empty(t, f.compositor.eyes)
}
