package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/renderer"
)

// FrameWriter receives completed frames in index order
type FrameWriter interface {
	WriteFrame(index int, fb *renderer.FrameBuffer) error
	Close() error
}

// FrameName returns the file name used for frame index
func FrameName(index int, ext string) string {
	return fmt.Sprintf("frame_%04d.%s", index, ext)
}

type encodeFunc func(w io.Writer, img image.Image) error

// FileWriter writes each frame to its own numbered file
type FileWriter struct {
	dir       string
	ext       string
	encode    encodeFunc
	converter Converter
	logger    core.Logger
}

// NewBMPWriter writes frame_NNNN.bmp files into dir
func NewBMPWriter(dir string, converter Converter, logger core.Logger) *FileWriter {
	return newFileWriter(dir, "bmp", bmp.Encode, converter, logger)
}

// NewPNGWriter writes frame_NNNN.png files into dir
func NewPNGWriter(dir string, converter Converter, logger core.Logger) *FileWriter {
	return newFileWriter(dir, "png", png.Encode, converter, logger)
}

func newFileWriter(dir, ext string, encode encodeFunc, converter Converter, logger core.Logger) *FileWriter {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &FileWriter{dir: dir, ext: ext, encode: encode, converter: converter, logger: logger}
}

// WriteFrame encodes fb to dir/frame_NNNN.ext
func (w *FileWriter) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.dir, FrameName(index, w.ext))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := w.encode(f, w.converter.ToRGBA(index, fb)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	w.logger.Debugf("Wrote %s", path)
	return nil
}

// Close is a no-op; every frame is flushed as it is written
func (w *FileWriter) Close() error {
	return nil
}

// MultiWriter fans frames out to several writers
type MultiWriter struct {
	writers []FrameWriter
}

// NewMultiWriter creates a writer that forwards to every writer in order
func NewMultiWriter(writers ...FrameWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteFrame stops at the first failing writer
func (m *MultiWriter) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	for _, w := range m.writers {
		if err := w.WriteFrame(index, fb); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and joins their errors
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
