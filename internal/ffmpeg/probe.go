package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// Prober extracts media metadata using the ffprobe binary.
type Prober struct {
	bin string
}

func NewProber(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{bin: bin}
}

// Metadata is the subset of probe output the engines need.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	Size     int64
}

type probeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe analyzes a media file with ffprobe's JSON output.
func (p *Prober) Probe(ctx context.Context, path string) (*Metadata, error) {
	if path == "" {
		return nil, fmt.Errorf("probe path cannot be empty")
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	}

	out, err := exec.CommandContext(ctx, p.bin, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	meta := &Metadata{}
	if parsed.Format.Duration != "" {
		meta.Duration, err = strconv.ParseFloat(parsed.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration %q: %w", parsed.Format.Duration, err)
		}
	}
	if parsed.Format.Size != "" {
		meta.Size, _ = strconv.ParseInt(parsed.Format.Size, 10, 64)
	}
	for _, s := range parsed.Streams {
		if s.CodecType == "video" {
			meta.Width = s.Width
			meta.Height = s.Height
			meta.Codec = s.CodecName
			break
		}
	}

	return meta, nil
}

// Duration returns just the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	meta, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	if meta.Duration <= 0 {
		return 0, fmt.Errorf("no duration in probe output for %s", path)
	}
	return meta.Duration, nil
}
