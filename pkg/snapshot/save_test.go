package snapshot

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

func testSnapshot() *Snapshot {
	in := openvr.Intrinsics{FocalLength: openvr.Vector2{X: 1, Y: 2}}
	return &Snapshot{
		ID:                uuid.MustParse("8f14e45f-ceea-467f-a2b6-1f7c2d0e0b4a"),
		Taken:             time.Unix(1700000000, 0),
		CameraImage:       image.NewRGBA(image.Rect(0, 0, 4, 3)),
		MirrorImage:       image.NewRGBA(image.Rect(0, 0, 8, 2)),
		Header:            openvr.FrameHeader{FrameType: openvr.FrameUndistorted, Width: 4, Height: 3, BytesPerPixel: 4, FrameSequence: 9},
		FrameSize:         openvr.FrameSize{Width: 4, Height: 3, FrameBufferSize: 48},
		Intrinsics:        []IntrinsicsEntry{{Camera: 0, FrameType: openvr.FrameDistorted, Intrinsics: &in}},
		Serial:            "LHR-TEST01",
		CalibrationConfig: steamNA,
	}
}

const steamNA = "N/A"

func TestSave(t *testing.T) {
	dir := t.TempDir()
	s := testSnapshot()

	out, err := Save(dir, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1700000000"), out)

	for _, name := range []string{CameraFile, MirrorFile, FrameFile, IntrinsicsFile, ConfigFile, ManifestFile} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoDirExists(t, out+".partial")

	f, err := os.Open(filepath.Join(out, MirrorFile))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 2), img.Bounds())

	b, err := os.ReadFile(filepath.Join(out, FrameFile))
	require.NoError(t, err)
	var doc struct {
		Size   map[string]uint32 `yaml:"size"`
		Header map[string]any    `yaml:"header"`
	}
	require.NoError(t, yaml.Unmarshal(b, &doc))
	assert.Equal(t, uint32(48), doc.Size["frame_buffer_size"])
	assert.Equal(t, "undistorted", doc.Header["frame_type"])
	assert.Equal(t, 9, doc.Header["frame_sequence"])

	cfg, err := os.ReadFile(filepath.Join(out, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, steamNA, string(cfg))

	b, err = os.ReadFile(filepath.Join(out, ManifestFile))
	require.NoError(t, err)
	var m manifest
	require.NoError(t, yaml.Unmarshal(b, &m))
	assert.Equal(t, s.ID.String(), m.ID)
	assert.Equal(t, [2]int{4, 3}, m.CameraSize)
}

func TestSaveExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(dir, testSnapshot())
	require.NoError(t, err)

	_, err = Save(dir, testSnapshot())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestSaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := testSnapshot()
	s.MirrorImage = nil

	_, err := Save(dir, s)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
