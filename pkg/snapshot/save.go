package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kevmo314/go-vrcapture/pkg/openvr"
)

// Files written for every snapshot.
const (
	CameraFile     = "camera.png"
	MirrorFile     = "mirror.png"
	FrameFile      = "frame.yaml"
	IntrinsicsFile = "intrinsics.yaml"
	ConfigFile     = "config.json"
	ManifestFile   = "snapshot.yaml"
)

type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving snapshot to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type frameDocument struct {
	Size   openvr.FrameSize   `yaml:"size"`
	Header openvr.FrameHeader `yaml:"header"`
}

type manifest struct {
	ID               string    `yaml:"id"`
	Taken            time.Time `yaml:"taken"`
	Serial           string    `yaml:"serial"`
	CalibrationPath  string    `yaml:"calibration_path"`
	CalibrationFound bool      `yaml:"calibration_found"`
	CameraSize       [2]int    `yaml:"camera_size,flow"`
	MirrorSize       [2]int    `yaml:"mirror_size,flow"`
	Files            []string  `yaml:"files"`
}

// Save writes s into dir/<unix seconds of s.Taken> and returns that
// directory. Files are written into a sibling ".partial" directory that is
// renamed into place only once everything has been written.
func Save(dir string, s *Snapshot) (string, error) {
	final := filepath.Join(dir, strconv.FormatInt(s.Taken.Unix(), 10))
	if _, err := os.Stat(final); err == nil {
		return "", &PersistenceError{Path: final, Err: fs.ErrExist}
	}
	tmp := final + ".partial"
	if err := os.RemoveAll(tmp); err != nil {
		return "", &PersistenceError{Path: tmp, Err: err}
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", &PersistenceError{Path: tmp, Err: err}
	}

	if err := writeAll(tmp, s); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.RemoveAll(tmp)
		return "", &PersistenceError{Path: final, Err: err}
	}
	return final, nil
}

func writeAll(dir string, s *Snapshot) error {
	if s.CameraImage == nil || s.MirrorImage == nil {
		return &PersistenceError{Path: dir, Err: errors.New("snapshot has no images")}
	}
	m := manifest{
		ID:               s.ID.String(),
		Taken:            s.Taken.UTC(),
		Serial:           s.Serial,
		CalibrationPath:  s.CalibrationPath,
		CalibrationFound: s.CalibrationFound,
		CameraSize:       [2]int{s.CameraImage.Bounds().Dx(), s.CameraImage.Bounds().Dy()},
		MirrorSize:       [2]int{s.MirrorImage.Bounds().Dx(), s.MirrorImage.Bounds().Dy()},
		Files:            []string{CameraFile, MirrorFile, FrameFile, IntrinsicsFile, ConfigFile},
	}
	steps := []struct {
		name  string
		write func(path string) error
	}{
		{ConfigFile, func(p string) error { return os.WriteFile(p, []byte(s.CalibrationConfig), 0o644) }},
		{CameraFile, func(p string) error { return writePNG(p, s.CameraImage) }},
		{MirrorFile, func(p string) error { return writePNG(p, s.MirrorImage) }},
		{FrameFile, func(p string) error { return writeYAML(p, frameDocument{Size: s.FrameSize, Header: s.Header}) }},
		{IntrinsicsFile, func(p string) error { return writeYAML(p, s.Intrinsics) }},
		{ManifestFile, func(p string) error { return writeYAML(p, m) }},
	}
	for _, step := range steps {
		path := filepath.Join(dir, step.name)
		if err := step.write(path); err != nil {
			return &PersistenceError{Path: path, Err: err}
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeYAML(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
