// Package vrcapture reads diagnostic images out of a running VR headset.
//
// A DeviceContext owns the Direct3D 11 device used for readback. A
// MirrorTexture borrows it to copy one eye of the compositor mirror into
// CPU memory through a staging texture. A StreamCapture polls the tracked
// camera's streaming service for a single passthrough frame with a bounded
// number of retries.
//
// Native handles are owned by exactly one wrapper and released in a fixed
// order: staging texture, then the mirror resource, then the compositor's
// view. Closing a wrapper more than once is a no-op.
package vrcapture
