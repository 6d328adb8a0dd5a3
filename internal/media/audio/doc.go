// Package audio holds decoded audio in memory and moves it through ffmpeg.
//
// Clips are raw signed 16-bit little-endian PCM in a fixed Format. A
// Composite is an ordered list of clips; its duration is derived from the
// frame count so start points never drift from what the encoder sees.
//
// Key types:
//   - Format: sample rate and channel count shared by every clip
//   - Clip: one decoded file
//   - Composite: the concatenated episode track
//   - FFmpeg: the Codec backed by the ffmpeg and ffprobe binaries
package audio
