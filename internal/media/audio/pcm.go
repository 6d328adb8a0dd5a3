package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

const bytesPerSample = 2

// Format describes interleaved s16le PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports an unusable format.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", f.Channels)
	}
	return nil
}

// FrameSize is the byte length of one sample across all channels.
func (f Format) FrameSize() int {
	return bytesPerSample * f.Channels
}

func (f Format) seconds(frames int64) float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(frames) / float64(f.SampleRate)
}

// Clip is one decoded audio file.
type Clip struct {
	format Format
	pcm    []byte
}

// NewClip wraps pcm. The length must be a whole number of frames.
func NewClip(format Format, pcm []byte) (Clip, error) {
	if err := format.Validate(); err != nil {
		return Clip{}, err
	}
	if len(pcm)%format.FrameSize() != 0 {
		return Clip{}, fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(pcm), format.FrameSize())
	}
	return Clip{format: format, pcm: pcm}, nil
}

// Silence returns a clip of d worth of zero samples.
func Silence(format Format, d time.Duration) (Clip, error) {
	if err := format.Validate(); err != nil {
		return Clip{}, err
	}
	frames := int64(d.Seconds() * float64(format.SampleRate))
	return Clip{format: format, pcm: make([]byte, frames*int64(format.FrameSize()))}, nil
}

// Format returns the clip's PCM format.
func (c Clip) Format() Format { return c.format }

// Frames returns the number of frames in the clip.
func (c Clip) Frames() int64 {
	if c.format.FrameSize() == 0 {
		return 0
	}
	return int64(len(c.pcm) / c.format.FrameSize())
}

// Seconds returns the clip duration.
func (c Clip) Seconds() float64 { return c.format.seconds(c.Frames()) }

// Duration returns the clip duration as a time.Duration.
func (c Clip) Duration() time.Duration {
	return time.Duration(c.Seconds() * float64(time.Second))
}

// Composite is an append-only sequence of clips sharing one format.
type Composite struct {
	format Format
	clips  []Clip
	frames int64
}

// NewComposite returns an empty composite.
func NewComposite(format Format) *Composite {
	return &Composite{format: format}
}

// Format returns the composite's PCM format.
func (c *Composite) Format() Format { return c.format }

// Append adds clip to the end of the composite.
func (c *Composite) Append(clip Clip) error {
	if clip.format != c.format {
		return fmt.Errorf("clip format %+v does not match composite format %+v", clip.format, c.format)
	}
	c.clips = append(c.clips, clip)
	c.frames += clip.Frames()
	return nil
}

// Len returns the number of appended clips.
func (c *Composite) Len() int { return len(c.clips) }

// Frames returns the total frame count.
func (c *Composite) Frames() int64 { return c.frames }

// Seconds returns the cumulative duration.
func (c *Composite) Seconds() float64 { return c.format.seconds(c.frames) }

// Reader streams the concatenated PCM.
func (c *Composite) Reader() io.Reader {
	readers := make([]io.Reader, 0, len(c.clips))
	for _, clip := range c.clips {
		readers = append(readers, bytes.NewReader(clip.pcm))
	}
	return io.MultiReader(readers...)
}

// ErrEmptyAudio is returned when a decoded file contains no samples.
var ErrEmptyAudio = errors.New("decoded audio is empty")
