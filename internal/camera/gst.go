package camera

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// LiveConfig configures the GStreamer camera source.
type LiveConfig struct {
	Device string // e.g. /dev/video0
	Width  int
	Height int
	Warmup time.Duration // settle time after PLAYING, lets auto-exposure adjust
	Logger *slog.Logger
}

// LiveSource captures JPEG frames from a V4L2 camera through a GStreamer
// pipeline: v4l2src → videoconvert → capsfilter → jpegenc → appsink.
// The appsink keeps only the latest buffer so every Grab sees a fresh
// frame rather than a stale buffered one.
type LiveSource struct {
	cfg    LiveConfig
	logger *slog.Logger

	pipeline *gst.Pipeline
	sink     *app.Sink
	open     bool
}

// NewLiveSource creates a live camera source with fail-fast validation.
func NewLiveSource(cfg LiveConfig) (*LiveSource, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("camera: device is required")
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Warmup == 0 {
		cfg.Warmup = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LiveSource{cfg: cfg, logger: cfg.Logger}, nil
}

// Start builds the pipeline and brings it to PLAYING.
func (s *LiveSource) Start() error {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return fmt.Errorf("failed to create v4l2src: %w", err)
	}
	src.SetProperty("device", s.cfg.Device)

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("failed to create videoconvert: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("video/x-raw,width=%d,height=%d", s.cfg.Width, s.cfg.Height)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	enc, err := gst.NewElement("jpegenc")
	if err != nil {
		return fmt.Errorf("failed to create jpegenc: %w", err)
	}

	sink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("failed to create appsink: %w", err)
	}
	sink.SetProperty("sync", false)    // no clock sync, grab is on demand
	sink.SetProperty("max-buffers", 1) // keep only the latest frame
	sink.SetProperty("drop", true)

	pipeline.AddMany(src, convert, capsfilter, enc, sink.Element)
	if err := gst.ElementLinkMany(src, convert, capsfilter, enc, sink.Element); err != nil {
		return fmt.Errorf("failed to link pipeline: %w", err)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return fmt.Errorf("cannot open camera %s: %w", s.cfg.Device, err)
	}

	// Let the camera warm up and auto-expose before first grab.
	time.Sleep(s.cfg.Warmup)

	s.pipeline = pipeline
	s.sink = sink
	s.open = true
	s.logger.Info("camera: live source started",
		"device", s.cfg.Device, "width", s.cfg.Width, "height", s.cfg.Height)
	return nil
}

// Stop tears down the pipeline. Idempotent.
func (s *LiveSource) Stop() {
	if s.pipeline != nil {
		s.pipeline.SetState(gst.StateNull)
		s.pipeline = nil
		s.sink = nil
	}
	s.open = false
}

// IsOpen reports whether the pipeline is running.
func (s *LiveSource) IsOpen() bool {
	return s.open
}

// Grab pulls the latest frame from the appsink as JPEG bytes.
func (s *LiveSource) Grab() ([]byte, error) {
	if !s.open || s.sink == nil {
		return nil, ErrNotOpen
	}

	sample := s.sink.PullSample()
	if sample == nil {
		return nil, fmt.Errorf("failed to read frame from camera %s", s.cfg.Device)
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return nil, fmt.Errorf("camera sample had no buffer")
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		return nil, fmt.Errorf("camera returned empty frame")
	}

	// Copy out; GStreamer reuses the buffer after Unmap.
	frame := make([]byte, len(data))
	copy(frame, data)
	buffer.Unmap()

	return frame, nil
}
