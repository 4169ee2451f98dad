package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 60, opts.SegmentSeconds)
	assert.Equal(t, types.AspectOriginal, opts.Aspect)
	assert.Equal(t, types.EncodeModeFast, opts.Mode)
	assert.False(t, opts.Pad)
	assert.Equal(t, 30*time.Second, opts.ProbeTimeout)
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segmenter.yaml")
	content := "segment_seconds: 15\naspect: \"9:16\"\nmode: precise\nsegment_timeout: 2m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts := DefaultOptions()
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, 15, opts.SegmentSeconds)
	assert.Equal(t, types.Aspect9x16, opts.Aspect)
	assert.Equal(t, types.EncodeModePrecise, opts.Mode)
	assert.Equal(t, 2*time.Minute, opts.SegmentTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultProbeTimeout, opts.ProbeTimeout)
	assert.False(t, opts.Pad)
}

func TestLoadFile_Errors(t *testing.T) {
	opts := DefaultOptions()
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &opts))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("segment_seconds: [oops"), 0o644))
	assert.Error(t, LoadFile(path, &opts))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *SplitOptions)
		wantErr bool
	}{
		{"defaults", func(o *SplitOptions) {}, false},
		{"min length", func(o *SplitOptions) { o.SegmentSeconds = 1 }, false},
		{"max length", func(o *SplitOptions) { o.SegmentSeconds = 3600 }, false},
		{"zero length", func(o *SplitOptions) { o.SegmentSeconds = 0 }, true},
		{"too long", func(o *SplitOptions) { o.SegmentSeconds = 3601 }, true},
		{"no input", func(o *SplitOptions) { o.InputPath = "" }, true},
		{"bad mode", func(o *SplitOptions) { o.Mode = "turbo" }, true},
		{"bad aspect", func(o *SplitOptions) { o.Aspect = "21:9" }, true},
		{"negative timeout", func(o *SplitOptions) { o.SegmentTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.InputPath = "/videos/in.mp4"
			tt.mutate(&opts)

			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	opts := SplitOptions{InputPath: "in.mov", SegmentSeconds: 10, Aspect: "square"}
	require.NoError(t, opts.Validate())

	assert.Equal(t, types.Aspect1x1, opts.Aspect)
	assert.Equal(t, types.EncodeModeFast, opts.Mode)
}

func TestValidate_NormalizesModeCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segmenter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: Precise\naspect: Vertical\n"), 0o644))

	opts := DefaultOptions()
	opts.InputPath = "in.mov"
	require.NoError(t, LoadFile(path, &opts))
	require.NoError(t, opts.Validate())

	assert.Equal(t, types.EncodeModePrecise, opts.Mode)
	assert.Equal(t, types.Aspect9x16, opts.Aspect)
}
