// Package gpu is a thin view of the Direct3D 11 objects needed to read a
// texture back to CPU memory. Every object wraps a reference-counted native
// handle; whoever obtains one owns exactly one reference and must Release it.
package gpu

import (
	"errors"
	"fmt"
)

var ErrUnsupported = errors.New("gpu: direct3d 11 is not available on this platform")

// DXGI / D3D11 constants used for staging copies.
const (
	FormatR8G8B8A8UNorm = 28

	UsageDefault = 0
	UsageStaging = 3

	CPUAccessWrite = 0x10000
	CPUAccessRead  = 0x20000

	MapRead      = 1
	MapWrite     = 2
	MapReadWrite = 3
)

// TextureDesc matches D3D11_TEXTURE2D_DESC.
type TextureDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32
	SampleQuality  uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// Staging returns a CPU readable and writable copy target with the same
// geometry as d. The format is always 8-bit RGBA.
func (d TextureDesc) Staging() TextureDesc {
	d.BindFlags = 0
	d.CPUAccessFlags = CPUAccessRead | CPUAccessWrite
	d.Usage = UsageStaging
	d.Format = FormatR8G8B8A8UNorm
	d.MiscFlags = 0
	return d
}

// Mapped is a CPU view of a mapped subresource. Data is only valid until
// the matching Unmap.
type Mapped struct {
	Data     []byte
	RowPitch uint32
}

// Resource is a COM reference to an ID3D11Resource. The holder owns one
// reference and must call Release exactly once.
type Resource interface {
	// Texture2D queries the ID3D11Texture2D interface of the resource. The
	// returned texture holds its own reference.
	Texture2D() (Texture2D, error)
	Release()
}

// Texture2D is an owned ID3D11Texture2D reference.
type Texture2D interface {
	Resource
	Desc() TextureDesc
}

// ShaderResourceView is a view handed out by another component (the
// compositor). It is never released through Release; the owner takes it back.
type ShaderResourceView interface {
	Ptr() uintptr
	Resource() (Resource, error)
}

// Device owns an ID3D11Device. Resources it creates must be released
// before the device.
type Device interface {
	// Ptr is the raw ID3D11Device pointer for APIs that need it.
	Ptr() uintptr
	CreateTexture2D(desc TextureDesc) (Texture2D, error)
	OpenShaderResourceView(ptr uintptr) (ShaderResourceView, error)
	Release()
}

// Context owns the immediate ID3D11DeviceContext of a Device. It is not
// safe for concurrent use.
type Context interface {
	CopyResource(dst, src Resource)
	// Map blocks until pending GPU work writing to res has completed.
	Map(res Resource, subresource uint32, mapType uint32) (Mapped, error)
	Unmap(res Resource, subresource uint32)
	Release()
}

// DeviceFactory creates a device and its immediate context.
type DeviceFactory func() (Device, Context, error)

// Error is a failed native call.
type Error struct {
	Op      string
	HRESULT int32
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: 0x%08X", e.Op, uint32(e.HRESULT))
}

func checkHR(op string, hr uintptr) error {
	if int32(hr) < 0 {
		return &Error{Op: op, HRESULT: int32(hr)}
	}
	return nil
}
