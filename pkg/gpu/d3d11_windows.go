//go:build windows

package gpu

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modd3d11 = windows.NewLazySystemDLL("d3d11.dll")

	procD3D11CreateDevice = modd3d11.NewProc("D3D11CreateDevice")

	IID_ID3D11Texture2D = windows.GUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)

const (
	d3dDriverTypeHardware = 1
	d3d11SDKVersion       = 7
)

type IUnknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

// ID3D11Device vtable
type ID3D11DeviceVtbl struct {
	IUnknownVtbl
	CreateBuffer                         uintptr
	CreateTexture1D                      uintptr
	CreateTexture2D                      uintptr
	CreateTexture3D                      uintptr
	CreateShaderResourceView             uintptr
	CreateUnorderedAccessView            uintptr
	CreateRenderTargetView               uintptr
	CreateDepthStencilView               uintptr
	CreateInputLayout                    uintptr
	CreateVertexShader                   uintptr
	CreateGeometryShader                 uintptr
	CreateGeometryShaderWithStreamOutput uintptr
	CreatePixelShader                    uintptr
	CreateHullShader                     uintptr
	CreateDomainShader                   uintptr
	CreateComputeShader                  uintptr
	CreateClassLinkage                   uintptr
	CreateBlendState                     uintptr
	CreateDepthStencilState              uintptr
	CreateRasterizerState                uintptr
	CreateSamplerState                   uintptr
	CreateQuery                          uintptr
	CreatePredicate                      uintptr
	CreateCounter                        uintptr
	CreateDeferredContext                uintptr
	OpenSharedResource                   uintptr
	CheckFormatSupport                   uintptr
	CheckMultisampleQualityLevels        uintptr
	CheckCounterInfo                     uintptr
	CheckCounter                         uintptr
	CheckFeatureSupport                  uintptr
	GetPrivateData                       uintptr
	SetPrivateData                       uintptr
	SetPrivateDataInterface              uintptr
	GetFeatureLevel                      uintptr
	GetCreationFlags                     uintptr
	GetDeviceRemovedReason               uintptr
	GetImmediateContext                  uintptr
	SetExceptionMode                     uintptr
	GetExceptionMode                     uintptr
}

type ID3D11Device struct {
	vtbl *ID3D11DeviceVtbl
}

func (d *ID3D11Device) Ptr() uintptr {
	return uintptr(unsafe.Pointer(d))
}

func (d *ID3D11Device) Release() {
	if d != nil && d.vtbl != nil {
		syscall.SyscallN(d.vtbl.Release, uintptr(unsafe.Pointer(d)))
	}
}

func (d *ID3D11Device) CreateTexture2D(desc TextureDesc) (Texture2D, error) {
	var tex *ID3D11Texture2D
	hr, _, _ := syscall.SyscallN(d.vtbl.CreateTexture2D,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&desc)),
		0,
		uintptr(unsafe.Pointer(&tex)))
	if err := checkHR("CreateTexture2D", hr); err != nil {
		return nil, err
	}
	if tex == nil {
		return nil, &Error{Op: "CreateTexture2D"}
	}
	return tex, nil
}

func (d *ID3D11Device) OpenShaderResourceView(ptr uintptr) (ShaderResourceView, error) {
	if ptr == 0 {
		return nil, fmt.Errorf("OpenShaderResourceView: nil view")
	}
	return (*ID3D11ShaderResourceView)(unsafe.Pointer(ptr)), nil
}

// ID3D11DeviceContext vtable, up to CopyResource.
type ID3D11DeviceContextVtbl struct {
	IUnknownVtbl
	GetDevice                                 uintptr
	GetPrivateData                            uintptr
	SetPrivateData                            uintptr
	SetPrivateDataInterface                   uintptr
	VSSetConstantBuffers                      uintptr
	PSSetShaderResources                      uintptr
	PSSetShader                               uintptr
	PSSetSamplers                             uintptr
	VSSetShader                               uintptr
	DrawIndexed                               uintptr
	Draw                                      uintptr
	Map                                       uintptr
	Unmap                                     uintptr
	PSSetConstantBuffers                      uintptr
	IASetInputLayout                          uintptr
	IASetVertexBuffers                        uintptr
	IASetIndexBuffer                          uintptr
	DrawIndexedInstanced                      uintptr
	DrawInstanced                             uintptr
	GSSetConstantBuffers                      uintptr
	GSSetShader                               uintptr
	IASetPrimitiveTopology                    uintptr
	VSSetShaderResources                      uintptr
	VSSetSamplers                             uintptr
	Begin                                     uintptr
	End                                       uintptr
	GetData                                   uintptr
	SetPredication                            uintptr
	GSSetShaderResources                      uintptr
	GSSetSamplers                             uintptr
	OMSetRenderTargets                        uintptr
	OMSetRenderTargetsAndUnorderedAccessViews uintptr
	OMSetBlendState                           uintptr
	OMSetDepthStencilState                    uintptr
	SOSetTargets                              uintptr
	DrawAuto                                  uintptr
	DrawIndexedInstancedIndirect              uintptr
	DrawInstancedIndirect                     uintptr
	Dispatch                                  uintptr
	DispatchIndirect                          uintptr
	RSSetState                                uintptr
	RSSetViewports                            uintptr
	RSSetScissorRects                         uintptr
	CopySubresourceRegion                     uintptr
	CopyResource                              uintptr
}

type ID3D11DeviceContext struct {
	vtbl *ID3D11DeviceContextVtbl
}

func (c *ID3D11DeviceContext) Release() {
	if c != nil && c.vtbl != nil {
		syscall.SyscallN(c.vtbl.Release, uintptr(unsafe.Pointer(c)))
	}
}

func (c *ID3D11DeviceContext) CopyResource(dst, src Resource) {
	syscall.SyscallN(c.vtbl.CopyResource,
		uintptr(unsafe.Pointer(c)),
		comPtr(dst),
		comPtr(src))
}

// d3d11MappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

func (c *ID3D11DeviceContext) Map(res Resource, subresource uint32, mapType uint32) (Mapped, error) {
	tex, ok := res.(*ID3D11Texture2D)
	if !ok {
		return Mapped{}, fmt.Errorf("Map: unsupported resource %T", res)
	}
	var m d3d11MappedSubresource
	hr, _, _ := syscall.SyscallN(c.vtbl.Map,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(tex)),
		uintptr(subresource),
		uintptr(mapType),
		0,
		uintptr(unsafe.Pointer(&m)))
	if err := checkHR("Map", hr); err != nil {
		return Mapped{}, err
	}
	if m.PData == 0 {
		return Mapped{}, &Error{Op: "Map"}
	}
	desc := tex.Desc()
	size := int(m.RowPitch) * int(desc.Height)
	return Mapped{
		Data:     unsafe.Slice((*byte)(unsafe.Pointer(m.PData)), size),
		RowPitch: m.RowPitch,
	}, nil
}

func (c *ID3D11DeviceContext) Unmap(res Resource, subresource uint32) {
	syscall.SyscallN(c.vtbl.Unmap,
		uintptr(unsafe.Pointer(c)),
		comPtr(res),
		uintptr(subresource))
}

// ID3D11Resource vtable (ID3D11DeviceChild + resource methods)
type ID3D11ResourceVtbl struct {
	IUnknownVtbl
	GetDevice               uintptr
	GetPrivateData          uintptr
	SetPrivateData          uintptr
	SetPrivateDataInterface uintptr
	GetType                 uintptr
	SetEvictionPriority     uintptr
	GetEvictionPriority     uintptr
}

type ID3D11Resource struct {
	vtbl *ID3D11ResourceVtbl
}

func (r *ID3D11Resource) Release() {
	if r != nil && r.vtbl != nil {
		syscall.SyscallN(r.vtbl.Release, uintptr(unsafe.Pointer(r)))
	}
}

func (r *ID3D11Resource) Texture2D() (Texture2D, error) {
	var tex *ID3D11Texture2D
	hr, _, _ := syscall.SyscallN(r.vtbl.QueryInterface,
		uintptr(unsafe.Pointer(r)),
		uintptr(unsafe.Pointer(&IID_ID3D11Texture2D)),
		uintptr(unsafe.Pointer(&tex)))
	if err := checkHR("QueryInterface(ID3D11Texture2D)", hr); err != nil {
		return nil, err
	}
	if tex == nil {
		return nil, &Error{Op: "QueryInterface(ID3D11Texture2D)"}
	}
	return tex, nil
}

type ID3D11Texture2DVtbl struct {
	ID3D11ResourceVtbl
	GetDesc uintptr
}

type ID3D11Texture2D struct {
	vtbl *ID3D11Texture2DVtbl
}

func (t *ID3D11Texture2D) Release() {
	if t != nil && t.vtbl != nil {
		syscall.SyscallN(t.vtbl.Release, uintptr(unsafe.Pointer(t)))
	}
}

func (t *ID3D11Texture2D) Texture2D() (Texture2D, error) {
	syscall.SyscallN(t.vtbl.AddRef, uintptr(unsafe.Pointer(t)))
	return t, nil
}

func (t *ID3D11Texture2D) Desc() TextureDesc {
	var desc TextureDesc
	syscall.SyscallN(t.vtbl.GetDesc,
		uintptr(unsafe.Pointer(t)),
		uintptr(unsafe.Pointer(&desc)))
	return desc
}

type ID3D11ShaderResourceViewVtbl struct {
	IUnknownVtbl
	GetDevice               uintptr
	GetPrivateData          uintptr
	SetPrivateData          uintptr
	SetPrivateDataInterface uintptr
	GetResource             uintptr
	GetDesc                 uintptr
}

type ID3D11ShaderResourceView struct {
	vtbl *ID3D11ShaderResourceViewVtbl
}

func (v *ID3D11ShaderResourceView) Ptr() uintptr {
	return uintptr(unsafe.Pointer(v))
}

// Resource returns the viewed resource. GetResource adds a reference.
func (v *ID3D11ShaderResourceView) Resource() (Resource, error) {
	var res *ID3D11Resource
	syscall.SyscallN(v.vtbl.GetResource,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(&res)))
	if res == nil {
		return nil, &Error{Op: "GetResource"}
	}
	return res, nil
}

func comPtr(r Resource) uintptr {
	switch r := r.(type) {
	case *ID3D11Texture2D:
		return uintptr(unsafe.Pointer(r))
	case *ID3D11Resource:
		return uintptr(unsafe.Pointer(r))
	}
	return 0
}

// CreateHardwareDevice creates a D3D11 device on the default adapter.
func CreateHardwareDevice() (Device, Context, error) {
	var device *ID3D11Device
	var context *ID3D11DeviceContext
	var featureLevel uint32
	hr, _, _ := procD3D11CreateDevice.Call(
		0,                                      // pAdapter
		uintptr(d3dDriverTypeHardware),         // DriverType
		0,                                      // Software
		0,                                      // Flags
		0,                                      // pFeatureLevels
		0,                                      // FeatureLevels
		uintptr(d3d11SDKVersion),               // SDKVersion
		uintptr(unsafe.Pointer(&device)),       // ppDevice
		uintptr(unsafe.Pointer(&featureLevel)), // pFeatureLevel
		uintptr(unsafe.Pointer(&context)),      // ppImmediateContext
	)
	if err := checkHR("D3D11CreateDevice", hr); err != nil {
		return nil, nil, err
	}
	if device == nil || context == nil {
		context.Release()
		device.Release()
		return nil, nil, &Error{Op: "D3D11CreateDevice"}
	}
	return device, context, nil
}

var (
	_ Device             = (*ID3D11Device)(nil)
	_ Context            = (*ID3D11DeviceContext)(nil)
	_ Resource           = (*ID3D11Resource)(nil)
	_ Texture2D          = (*ID3D11Texture2D)(nil)
	_ ShaderResourceView = (*ID3D11ShaderResourceView)(nil)
)
