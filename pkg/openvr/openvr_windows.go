//go:build windows

package openvr

import (
	"fmt"
	"math"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modopenvr = windows.NewLazyDLL("openvr_api.dll")

	procVRInitInternal                       = modopenvr.NewProc("VR_InitInternal")
	procVRShutdownInternal                   = modopenvr.NewProc("VR_ShutdownInternal")
	procVRIsInterfaceVersionValid            = modopenvr.NewProc("VR_IsInterfaceVersionValid")
	procVRGetGenericInterface                = modopenvr.NewProc("VR_GetGenericInterface")
	procVRGetVRInitErrorAsSymbol             = modopenvr.NewProc("VR_GetVRInitErrorAsSymbol")
	procVRGetVRInitErrorAsEnglishDescription = modopenvr.NewProc("VR_GetVRInitErrorAsEnglishDescription")
)

func vrInit(app ApplicationType) error {
	if err := modopenvr.Load(); err != nil {
		return fmt.Errorf("loading openvr_api.dll: %w", err)
	}
	var code int32
	procVRInitInternal.Call(uintptr(unsafe.Pointer(&code)), uintptr(app))
	if code != 0 {
		return newInitError(code)
	}
	for _, version := range []string{IVRSystemVersion, IVRCompositorVersion, IVRTrackedCameraVersion, IVRSettingsVersion} {
		if !interfaceVersionValid(version) {
			procVRShutdownInternal.Call()
			return fmt.Errorf("%s: %w", version, newInitError(InitErrorInterfaceNotFound))
		}
	}
	return nil
}

func vrShutdown() {
	procVRShutdownInternal.Call()
}

func interfaceVersionValid(version string) bool {
	name, err := windows.BytePtrFromString(version)
	if err != nil {
		return false
	}
	ok, _, _ := procVRIsInterfaceVersionValid.Call(uintptr(unsafe.Pointer(name)))
	return byte(ok) != 0
}

func newInitError(code int32) error {
	e := &InitError{Code: code}
	if r, _, _ := procVRGetVRInitErrorAsSymbol.Call(uintptr(code)); r != 0 {
		e.Symbol = windows.BytePtrToString((*byte)(unsafe.Pointer(r)))
	}
	if r, _, _ := procVRGetVRInitErrorAsEnglishDescription.Call(uintptr(code)); r != 0 {
		e.Description = windows.BytePtrToString((*byte)(unsafe.Pointer(r)))
	}
	return e
}

func loadTable(ctx *Context, version string) (unsafe.Pointer, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	name, err := windows.BytePtrFromString("FnTable:" + version)
	if err != nil {
		return nil, err
	}
	var code int32
	p, _, _ := procVRGetGenericInterface.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&code)))
	if code != 0 {
		return nil, fmt.Errorf("%s: %w", version, newInitError(code))
	}
	if p == 0 {
		return nil, fmt.Errorf("%s: %w", version, newInitError(InitErrorInterfaceNotFound))
	}
	return unsafe.Pointer(p), nil
}

func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(p)))
}

// VR_IVRSystem_FnTable, up to GetStringTrackedDeviceProperty.
type systemFnTable struct {
	GetRecommendedRenderTargetSize                  uintptr
	GetProjectionMatrix                             uintptr
	GetProjectionRaw                                uintptr
	ComputeDistortion                               uintptr
	GetEyeToHeadTransform                           uintptr
	GetTimeSinceLastVsync                           uintptr
	GetD3D9AdapterIndex                             uintptr
	GetDXGIOutputInfo                               uintptr
	GetOutputDevice                                 uintptr
	IsDisplayOnDesktop                              uintptr
	SetDisplayVisibility                            uintptr
	GetDeviceToAbsoluteTrackingPose                 uintptr
	GetSeatedZeroPoseToStandingAbsoluteTrackingPose uintptr
	GetRawZeroPoseToStandingAbsoluteTrackingPose    uintptr
	GetSortedTrackedDeviceIndicesOfClass            uintptr
	GetTrackedDeviceActivityLevel                   uintptr
	ApplyTransform                                  uintptr
	GetTrackedDeviceIndexForControllerRole          uintptr
	GetControllerRoleForTrackedDeviceIndex          uintptr
	GetTrackedDeviceClass                           uintptr
	IsTrackedDeviceConnected                        uintptr
	GetBoolTrackedDeviceProperty                    uintptr
	GetFloatTrackedDeviceProperty                   uintptr
	GetInt32TrackedDeviceProperty                   uintptr
	GetUint64TrackedDeviceProperty                  uintptr
	GetMatrix34TrackedDeviceProperty                uintptr
	GetArrayTrackedDeviceProperty                   uintptr
	GetStringTrackedDeviceProperty                  uintptr
	GetPropErrorNameFromEnum                        uintptr
}

type System struct {
	table *systemFnTable
}

func NewSystem(ctx *Context) (*System, error) {
	p, err := loadTable(ctx, IVRSystemVersion)
	if err != nil {
		return nil, err
	}
	return &System{table: (*systemFnTable)(p)}, nil
}

// StringProperty reads a string device property, sizing the buffer from
// the runtime's first answer.
func (s *System) StringProperty(dev TrackedDeviceIndex, prop TrackedDeviceProperty) (string, error) {
	var code PropertyErrorCode
	n, _, _ := syscall.SyscallN(s.table.GetStringTrackedDeviceProperty,
		uintptr(dev),
		uintptr(prop),
		0,
		0,
		uintptr(unsafe.Pointer(&code)))
	if code != PropertySuccess && code != PropertyBufferTooSmall {
		return "", NewPropertyError(code)
	}
	if uint32(n) == 0 {
		return "", nil
	}
	buf := make([]byte, uint32(n))
	syscall.SyscallN(s.table.GetStringTrackedDeviceProperty,
		uintptr(dev),
		uintptr(prop),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&code)))
	if err := NewPropertyError(code); err != nil {
		return "", err
	}
	return windows.ByteSliceToString(buf), nil
}

// VR_IVRCompositor_FnTable
type compositorFnTable struct {
	SetTrackingSpace                 uintptr
	GetTrackingSpace                 uintptr
	WaitGetPoses                     uintptr
	GetLastPoses                     uintptr
	GetLastPoseForTrackedDeviceIndex uintptr
	Submit                           uintptr
	ClearLastSubmittedFrame          uintptr
	PostPresentHandoff               uintptr
	GetFrameTiming                   uintptr
	GetFrameTimings                  uintptr
	GetFrameTimeRemaining            uintptr
	GetCumulativeStats               uintptr
	FadeToColor                      uintptr
	GetCurrentFadeColor              uintptr
	FadeGrid                         uintptr
	GetCurrentGridAlpha              uintptr
	SetSkyboxOverride                uintptr
	ClearSkyboxOverride              uintptr
	CompositorBringToFront           uintptr
	CompositorGoToBack               uintptr
	CompositorQuit                   uintptr
	IsFullscreen                     uintptr
	GetCurrentSceneFocusProcess      uintptr
	GetLastFrameRenderer             uintptr
	CanRenderScene                   uintptr
	ShowMirrorWindow                 uintptr
	HideMirrorWindow                 uintptr
	IsMirrorWindowVisible            uintptr
	CompositorDumpImages             uintptr
	ShouldAppRenderWithLowResources  uintptr
	ForceInterleavedReprojectionOn   uintptr
	ForceReconnectProcess            uintptr
	SuspendRendering                 uintptr
	GetMirrorTextureD3D11            uintptr
	ReleaseMirrorTextureD3D11        uintptr
}

type Compositor struct {
	table *compositorFnTable
}

func NewCompositor(ctx *Context) (*Compositor, error) {
	p, err := loadTable(ctx, IVRCompositorVersion)
	if err != nil {
		return nil, err
	}
	return &Compositor{table: (*compositorFnTable)(p)}, nil
}

// MirrorTextureD3D11 returns a shader resource view of the compositor's
// mirror texture for eye, opened on device. The view must be handed back
// with ReleaseMirrorTextureD3D11.
func (c *Compositor) MirrorTextureD3D11(eye Eye, device uintptr) (uintptr, error) {
	var view uintptr
	code, _, _ := syscall.SyscallN(c.table.GetMirrorTextureD3D11,
		uintptr(eye),
		device,
		uintptr(unsafe.Pointer(&view)))
	if err := NewCompositorError(CompositorErrorCode(int32(code))); err != nil {
		return 0, err
	}
	return view, nil
}

func (c *Compositor) ReleaseMirrorTextureD3D11(view uintptr) {
	syscall.SyscallN(c.table.ReleaseMirrorTextureD3D11, view)
}

// VR_IVRTrackedCamera_FnTable, up to GetVideoStreamFrameBuffer.
type trackedCameraFnTable struct {
	GetCameraErrorNameFromEnum   uintptr
	HasCamera                    uintptr
	GetCameraFrameSize           uintptr
	GetCameraIntrinsics          uintptr
	GetCameraProjection          uintptr
	AcquireVideoStreamingService uintptr
	ReleaseVideoStreamingService uintptr
	GetVideoStreamFrameBuffer    uintptr
}

type TrackedCamera struct {
	table *trackedCameraFnTable
}

func NewTrackedCamera(ctx *Context) (*TrackedCamera, error) {
	p, err := loadTable(ctx, IVRTrackedCameraVersion)
	if err != nil {
		return nil, err
	}
	return &TrackedCamera{table: (*trackedCameraFnTable)(p)}, nil
}

func (c *TrackedCamera) cameraError(r uintptr) error {
	code := CameraErrorCode(int32(r))
	if code == CameraErrorNone {
		return nil
	}
	name, _, _ := syscall.SyscallN(c.table.GetCameraErrorNameFromEnum, uintptr(code))
	return NewCameraError(code, cString(name))
}

func (c *TrackedCamera) HasCamera(dev TrackedDeviceIndex) (bool, error) {
	var has byte
	r, _, _ := syscall.SyscallN(c.table.HasCamera, uintptr(dev), uintptr(unsafe.Pointer(&has)))
	if err := c.cameraError(r); err != nil {
		return false, err
	}
	return has != 0, nil
}

// CameraFrameSize returns the frame geometry. The size is filled in even
// when the error is InvalidFrameBufferSize.
func (c *TrackedCamera) CameraFrameSize(dev TrackedDeviceIndex, ft FrameType) (FrameSize, error) {
	var size FrameSize
	r, _, _ := syscall.SyscallN(c.table.GetCameraFrameSize,
		uintptr(dev),
		uintptr(ft),
		uintptr(unsafe.Pointer(&size.Width)),
		uintptr(unsafe.Pointer(&size.Height)),
		uintptr(unsafe.Pointer(&size.FrameBufferSize)))
	return size, c.cameraError(r)
}

func (c *TrackedCamera) CameraIntrinsics(dev TrackedDeviceIndex, camera uint32, ft FrameType) (Intrinsics, error) {
	var in Intrinsics
	r, _, _ := syscall.SyscallN(c.table.GetCameraIntrinsics,
		uintptr(dev),
		uintptr(camera),
		uintptr(ft),
		uintptr(unsafe.Pointer(&in.FocalLength)),
		uintptr(unsafe.Pointer(&in.Center)))
	if err := c.cameraError(r); err != nil {
		return Intrinsics{}, err
	}
	return in, nil
}

// CameraProjection builds the projection matrix for the given clip planes.
// The float arguments travel as raw bits; the call path mirrors register
// arguments into the XMM registers.
func (c *TrackedCamera) CameraProjection(dev TrackedDeviceIndex, camera uint32, ft FrameType, near, far float32) (Matrix44, error) {
	var m Matrix44
	r, _, _ := syscall.SyscallN(c.table.GetCameraProjection,
		uintptr(dev),
		uintptr(camera),
		uintptr(ft),
		uintptr(math.Float32bits(near)),
		uintptr(math.Float32bits(far)),
		uintptr(unsafe.Pointer(&m)))
	if err := c.cameraError(r); err != nil {
		return Matrix44{}, err
	}
	return m, nil
}

func (c *TrackedCamera) AcquireVideoStreamingService(dev TrackedDeviceIndex) (CameraHandle, error) {
	var h CameraHandle
	r, _, _ := syscall.SyscallN(c.table.AcquireVideoStreamingService,
		uintptr(dev),
		uintptr(unsafe.Pointer(&h)))
	if err := c.cameraError(r); err != nil {
		return 0, err
	}
	return h, nil
}

func (c *TrackedCamera) ReleaseVideoStreamingService(h CameraHandle) error {
	r, _, _ := syscall.SyscallN(c.table.ReleaseVideoStreamingService, uintptr(h))
	return c.cameraError(r)
}

// VideoStreamFrameBuffer copies the latest frame into buf.
func (c *TrackedCamera) VideoStreamFrameBuffer(h CameraHandle, ft FrameType, buf []byte) (FrameHeader, error) {
	var header FrameHeader
	var p uintptr
	if len(buf) > 0 {
		p = uintptr(unsafe.Pointer(&buf[0]))
	}
	r, _, _ := syscall.SyscallN(c.table.GetVideoStreamFrameBuffer,
		uintptr(h),
		uintptr(ft),
		p,
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&header)),
		unsafe.Sizeof(header))
	if err := c.cameraError(r); err != nil {
		return FrameHeader{}, err
	}
	return header, nil
}

// VR_IVRSettings_FnTable
type settingsFnTable struct {
	GetSettingsErrorNameFromEnum uintptr
	SetBool                      uintptr
	SetInt32                     uintptr
	SetFloat                     uintptr
	SetString                    uintptr
	GetBool                      uintptr
	GetInt32                     uintptr
	GetFloat                     uintptr
	GetString                    uintptr
	RemoveSection                uintptr
	RemoveKeyInSection           uintptr
}

type Settings struct {
	table *settingsFnTable
}

func NewSettings(ctx *Context) (*Settings, error) {
	p, err := loadTable(ctx, IVRSettingsVersion)
	if err != nil {
		return nil, err
	}
	return &Settings{table: (*settingsFnTable)(p)}, nil
}

func (s *Settings) settingsError(code SettingsErrorCode) error {
	if code == SettingsErrorNone {
		return nil
	}
	name, _, _ := syscall.SyscallN(s.table.GetSettingsErrorNameFromEnum, uintptr(code))
	return NewSettingsError(code, cString(name))
}

func (s *Settings) Bool(section, key string) (bool, error) {
	sec, k, err := settingKey(section, key)
	if err != nil {
		return false, err
	}
	var code SettingsErrorCode
	r, _, _ := syscall.SyscallN(s.table.GetBool,
		uintptr(unsafe.Pointer(sec)),
		uintptr(unsafe.Pointer(k)),
		uintptr(unsafe.Pointer(&code)))
	if err := s.settingsError(code); err != nil {
		return false, err
	}
	return byte(r) != 0, nil
}

func (s *Settings) SetBool(section, key string, value bool) error {
	sec, k, err := settingKey(section, key)
	if err != nil {
		return err
	}
	var v uintptr
	if value {
		v = 1
	}
	var code SettingsErrorCode
	syscall.SyscallN(s.table.SetBool,
		uintptr(unsafe.Pointer(sec)),
		uintptr(unsafe.Pointer(k)),
		v,
		uintptr(unsafe.Pointer(&code)))
	return s.settingsError(code)
}

func (s *Settings) Int32(section, key string) (int32, error) {
	sec, k, err := settingKey(section, key)
	if err != nil {
		return 0, err
	}
	var code SettingsErrorCode
	r, _, _ := syscall.SyscallN(s.table.GetInt32,
		uintptr(unsafe.Pointer(sec)),
		uintptr(unsafe.Pointer(k)),
		uintptr(unsafe.Pointer(&code)))
	if err := s.settingsError(code); err != nil {
		return 0, err
	}
	return int32(r), nil
}

func (s *Settings) SetInt32(section, key string, value int32) error {
	sec, k, err := settingKey(section, key)
	if err != nil {
		return err
	}
	var code SettingsErrorCode
	syscall.SyscallN(s.table.SetInt32,
		uintptr(unsafe.Pointer(sec)),
		uintptr(unsafe.Pointer(k)),
		uintptr(uint32(value)),
		uintptr(unsafe.Pointer(&code)))
	return s.settingsError(code)
}

func settingKey(section, key string) (*byte, *byte, error) {
	sec, err := windows.BytePtrFromString(section)
	if err != nil {
		return nil, nil, err
	}
	k, err := windows.BytePtrFromString(key)
	if err != nil {
		return nil, nil, err
	}
	return sec, k, nil
}
