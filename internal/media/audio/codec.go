package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"digestcast/internal/media/ffprobe"
	"digestcast/internal/services"
)

const stageCodec = "codec"

// Codec decodes individual files and encodes a composite.
type Codec interface {
	Decode(ctx context.Context, path string) (Clip, error)
	Encode(ctx context.Context, composite *Composite, path string) (int64, error)
}

// FFmpeg implements Codec with the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegBinary  string
	FFprobeBinary string
	Format        Format
	Bitrate       string
}

// Decode probes path for an audio stream and decodes it to PCM in f.Format.
// Unreadable media yields an error marked ErrValidation or ErrExternalTool.
func (f FFmpeg) Decode(ctx context.Context, path string) (Clip, error) {
	if err := f.Format.Validate(); err != nil {
		return Clip{}, services.Wrap(services.ErrConfiguration, stageCodec, "decode", "Invalid audio format", err)
	}
	probe, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Clip{}, ctxErr
		}
		return Clip{}, services.Wrap(services.ErrValidation, stageCodec, "probe", "Media could not be probed", err)
	}
	if !probe.HasAudio() {
		return Clip{}, services.Wrap(services.ErrValidation, stageCodec, "probe",
			fmt.Sprintf("No audio stream in %s", filepath.Base(path)), nil)
	}

	args := []string{
		"-v", "error",
		"-i", path,
		"-map", "0:a:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(f.Format.Channels),
		"-ar", strconv.Itoa(f.Format.SampleRate),
		"-",
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.ffmpeg(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Clip{}, ctxErr
		}
		return Clip{}, services.Wrap(services.ErrExternalTool, stageCodec, "decode",
			fmt.Sprintf("ffmpeg decode failed: %s", strings.TrimSpace(stderr.String())), err)
	}
	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return Clip{}, services.Wrap(services.ErrValidation, stageCodec, "decode", filepath.Base(path), ErrEmptyAudio)
	}
	if rem := len(pcm) % f.Format.FrameSize(); rem != 0 {
		pcm = pcm[:len(pcm)-rem]
	}
	return NewClip(f.Format, pcm)
}

// Encode writes the composite to path as MP3 and returns the artifact size.
// The file is written beside path and renamed into place on success.
func (f FFmpeg) Encode(ctx context.Context, composite *Composite, path string) (int64, error) {
	if composite == nil {
		return 0, errors.New("encode: nil composite")
	}
	format := composite.Format()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, services.Wrap(services.ErrStorage, stageCodec, "encode", "Failed to create output directory", err)
	}
	tmp := path + ".part.mp3"
	defer os.Remove(tmp)

	bitrate := strings.TrimSpace(f.Bitrate)
	if bitrate == "" {
		bitrate = "128k"
	}
	args := []string{
		"-y",
		"-v", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(format.SampleRate),
		"-ac", strconv.Itoa(format.Channels),
		"-i", "-",
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		tmp,
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.ffmpeg(), args...)
	cmd.Stdin = composite.Reader()
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, services.Wrap(services.ErrExternalTool, stageCodec, "encode",
			fmt.Sprintf("ffmpeg encode failed: %s", strings.TrimSpace(stderr.String())), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, services.Wrap(services.ErrStorage, stageCodec, "encode", "Failed to move encoded composite into place", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, stageCodec, "encode", "Failed to stat encoded composite", err)
	}
	return info.Size(), nil
}

func (f FFmpeg) ffmpeg() string {
	if bin := strings.TrimSpace(f.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}
