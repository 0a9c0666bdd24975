package openvr

import (
	"errors"
	"fmt"
)

const InitErrorInterfaceNotFound int32 = 105

type InitError struct {
	Code        int32
	Symbol      string
	Description string
}

func (e *InitError) Error() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Symbol != "":
		return e.Symbol
	}
	return fmt.Sprintf("VRInitError(%d)", e.Code)
}

type CompositorErrorCode int32

const (
	CompositorErrorNone                         CompositorErrorCode = 0
	CompositorErrorRequestFailed                CompositorErrorCode = 1
	CompositorErrorIncompatibleVersion          CompositorErrorCode = 100
	CompositorErrorDoNotHaveFocus               CompositorErrorCode = 101
	CompositorErrorInvalidTexture               CompositorErrorCode = 102
	CompositorErrorIsNotSceneApplication        CompositorErrorCode = 103
	CompositorErrorTextureIsOnWrongDevice       CompositorErrorCode = 104
	CompositorErrorTextureUsesUnsupportedFormat CompositorErrorCode = 105
	CompositorErrorSharedTexturesNotSupported   CompositorErrorCode = 106
	CompositorErrorIndexOutOfRange              CompositorErrorCode = 107
	CompositorErrorAlreadySubmitted             CompositorErrorCode = 108
	CompositorErrorInvalidBounds                CompositorErrorCode = 109
)

const compositorErrorUnknown = "VRCompositorError_UnknownError"

var compositorErrorNames = map[CompositorErrorCode]string{
	CompositorErrorRequestFailed:                "VRCompositorError_RequestFailed",
	CompositorErrorIncompatibleVersion:          "VRCompositorError_IncompatibleVersion",
	CompositorErrorDoNotHaveFocus:               "VRCompositorError_DoNotHaveFocus",
	CompositorErrorInvalidTexture:               "VRCompositorError_InvalidTexture",
	CompositorErrorIsNotSceneApplication:        "VRCompositorError_IsNotSceneApplication",
	CompositorErrorTextureIsOnWrongDevice:       "VRCompositorError_TextureIsOnWrongDevice",
	CompositorErrorTextureUsesUnsupportedFormat: "VRCompositorError_TextureUsesUnsupportedFormat",
	CompositorErrorSharedTexturesNotSupported:   "VRCompositorError_SharedTexturesNotSupported",
	CompositorErrorIndexOutOfRange:              "VRCompositorError_IndexOutOfRange",
	CompositorErrorAlreadySubmitted:             "VRCompositorError_AlreadySubmitted",
	CompositorErrorInvalidBounds:                "VRCompositorError_InvalidBounds",
}

type CompositorError struct {
	Code CompositorErrorCode
	Name string
}

func (e *CompositorError) Error() string {
	return e.Name
}

func (e *CompositorError) Is(target error) bool {
	t, ok := target.(*CompositorError)
	return ok && t.Code == e.Code
}

// Unknown reports whether the runtime returned a code this package does not
// know about.
func (e *CompositorError) Unknown() bool {
	_, ok := compositorErrorNames[e.Code]
	return !ok
}

// NewCompositorError maps a compositor status to an error; success maps to
// nil and unrecognized codes to VRCompositorError_UnknownError.
func NewCompositorError(code CompositorErrorCode) error {
	if code == CompositorErrorNone {
		return nil
	}
	name, ok := compositorErrorNames[code]
	if !ok {
		name = compositorErrorUnknown
	}
	return &CompositorError{Code: code, Name: name}
}

type CameraErrorCode int32

const (
	CameraErrorNone                       CameraErrorCode = 0
	CameraErrorOperationFailed            CameraErrorCode = 100
	CameraErrorInvalidHandle              CameraErrorCode = 101
	CameraErrorInvalidFrameHeaderVersion  CameraErrorCode = 102
	CameraErrorOutOfHandles               CameraErrorCode = 103
	CameraErrorIPCFailure                 CameraErrorCode = 104
	CameraErrorNotSupportedForThisDevice  CameraErrorCode = 105
	CameraErrorSharedMemoryFailure        CameraErrorCode = 106
	CameraErrorFrameBufferingFailure      CameraErrorCode = 107
	CameraErrorStreamSetupFailure         CameraErrorCode = 108
	CameraErrorInvalidGLTextureID         CameraErrorCode = 109
	CameraErrorInvalidSharedTextureHandle CameraErrorCode = 110
	CameraErrorFailedToGetGLTextureID     CameraErrorCode = 111
	CameraErrorSharedTextureFailure       CameraErrorCode = 112
	CameraErrorNoFrameAvailable           CameraErrorCode = 113
	CameraErrorInvalidArgument            CameraErrorCode = 114
	CameraErrorInvalidFrameBufferSize     CameraErrorCode = 115
)

const cameraErrorUnknown = "VRTrackedCameraError_UnknownError"

var cameraErrorNames = map[CameraErrorCode]string{
	CameraErrorOperationFailed:            "VRTrackedCameraError_OperationFailed",
	CameraErrorInvalidHandle:              "VRTrackedCameraError_InvalidHandle",
	CameraErrorInvalidFrameHeaderVersion:  "VRTrackedCameraError_InvalidFrameHeaderVersion",
	CameraErrorOutOfHandles:               "VRTrackedCameraError_OutOfHandles",
	CameraErrorIPCFailure:                 "VRTrackedCameraError_IPCFailure",
	CameraErrorNotSupportedForThisDevice:  "VRTrackedCameraError_NotSupportedForThisDevice",
	CameraErrorSharedMemoryFailure:        "VRTrackedCameraError_SharedMemoryFailure",
	CameraErrorFrameBufferingFailure:      "VRTrackedCameraError_FrameBufferingFailure",
	CameraErrorStreamSetupFailure:         "VRTrackedCameraError_StreamSetupFailure",
	CameraErrorInvalidGLTextureID:         "VRTrackedCameraError_InvalidGLTextureId",
	CameraErrorInvalidSharedTextureHandle: "VRTrackedCameraError_InvalidSharedTextureHandle",
	CameraErrorFailedToGetGLTextureID:     "VRTrackedCameraError_FailedToGetGLTextureId",
	CameraErrorSharedTextureFailure:       "VRTrackedCameraError_SharedTextureFailure",
	CameraErrorNoFrameAvailable:           "VRTrackedCameraError_NoFrameAvailable",
	CameraErrorInvalidArgument:            "VRTrackedCameraError_InvalidArgument",
	CameraErrorInvalidFrameBufferSize:     "VRTrackedCameraError_InvalidFrameBufferSize",
}

type CameraError struct {
	Code CameraErrorCode
	Name string
}

func (e *CameraError) Error() string {
	return e.Name
}

func (e *CameraError) Is(target error) bool {
	t, ok := target.(*CameraError)
	return ok && t.Code == e.Code
}

// NewCameraError maps a tracked camera status to an error. name is the
// runtime's own name for the code and may be empty.
func NewCameraError(code CameraErrorCode, name string) error {
	if code == CameraErrorNone {
		return nil
	}
	if name == "" {
		if n, ok := cameraErrorNames[code]; ok {
			name = n
		} else {
			name = cameraErrorUnknown
		}
	}
	return &CameraError{Code: code, Name: name}
}

var (
	errNoFrameAvailable       = &CameraError{Code: CameraErrorNoFrameAvailable}
	errInvalidFrameBufferSize = &CameraError{Code: CameraErrorInvalidFrameBufferSize}
)

// IsFrameNotReady reports whether err means the stream has no frame yet.
func IsFrameNotReady(err error) bool {
	return errors.Is(err, errNoFrameAvailable)
}

// IsBufferTooSmall reports whether err is the size-only status returned
// while the caller's buffer does not match the frame.
func IsBufferTooSmall(err error) bool {
	return errors.Is(err, errInvalidFrameBufferSize)
}

type SettingsErrorCode int32

const (
	SettingsErrorNone                     SettingsErrorCode = 0
	SettingsErrorIPCFailed                SettingsErrorCode = 1
	SettingsErrorWriteFailed              SettingsErrorCode = 2
	SettingsErrorReadFailed               SettingsErrorCode = 3
	SettingsErrorJSONParseFailed          SettingsErrorCode = 4
	SettingsErrorUnsetSettingHasNoDefault SettingsErrorCode = 5
)

const settingsErrorUnknown = "VRSettingsError_UnknownError"

var settingsErrorNames = map[SettingsErrorCode]string{
	SettingsErrorIPCFailed:                "VRSettingsError_IPCFailed",
	SettingsErrorWriteFailed:              "VRSettingsError_WriteFailed",
	SettingsErrorReadFailed:               "VRSettingsError_ReadFailed",
	SettingsErrorJSONParseFailed:          "VRSettingsError_JsonParseFailed",
	SettingsErrorUnsetSettingHasNoDefault: "VRSettingsError_UnsetSettingHasNoDefault",
}

type SettingsError struct {
	Code SettingsErrorCode
	Name string
}

func (e *SettingsError) Error() string {
	return e.Name
}

func NewSettingsError(code SettingsErrorCode, name string) error {
	if code == SettingsErrorNone {
		return nil
	}
	if name == "" {
		if n, ok := settingsErrorNames[code]; ok {
			name = n
		} else {
			name = settingsErrorUnknown
		}
	}
	return &SettingsError{Code: code, Name: name}
}

type PropertyErrorCode int32

const (
	PropertySuccess                    PropertyErrorCode = 0
	PropertyWrongDataType              PropertyErrorCode = 1
	PropertyWrongDeviceClass           PropertyErrorCode = 2
	PropertyBufferTooSmall             PropertyErrorCode = 3
	PropertyUnknownProperty            PropertyErrorCode = 4
	PropertyInvalidDevice              PropertyErrorCode = 5
	PropertyCouldNotContactServer      PropertyErrorCode = 6
	PropertyValueNotProvidedByDevice   PropertyErrorCode = 7
	PropertyStringExceedsMaximumLength PropertyErrorCode = 8
	PropertyNotYetAvailable            PropertyErrorCode = 9
	PropertyPermissionDenied           PropertyErrorCode = 10
)

var propertyErrorNames = map[PropertyErrorCode]string{
	PropertyWrongDataType:              "TrackedProp_WrongDataType",
	PropertyWrongDeviceClass:           "TrackedProp_WrongDeviceClass",
	PropertyBufferTooSmall:             "TrackedProp_BufferTooSmall",
	PropertyUnknownProperty:            "TrackedProp_UnknownProperty",
	PropertyInvalidDevice:              "TrackedProp_InvalidDevice",
	PropertyCouldNotContactServer:      "TrackedProp_CouldNotContactServer",
	PropertyValueNotProvidedByDevice:   "TrackedProp_ValueNotProvidedByDevice",
	PropertyStringExceedsMaximumLength: "TrackedProp_StringExceedsMaximumLength",
	PropertyNotYetAvailable:            "TrackedProp_NotYetAvailable",
	PropertyPermissionDenied:           "TrackedProp_PermissionDenied",
}

type PropertyError struct {
	Code PropertyErrorCode
	Name string
}

func (e *PropertyError) Error() string {
	return e.Name
}

func NewPropertyError(code PropertyErrorCode) error {
	if code == PropertySuccess {
		return nil
	}
	name, ok := propertyErrorNames[code]
	if !ok {
		name = "TrackedProp_UnknownError"
	}
	return &PropertyError{Code: code, Name: name}
}
