// Package ffprobe runs ffprobe against a media file and decodes its JSON
// report. The audio codec uses it to reject files without an audio stream
// before decoding.
package ffprobe
