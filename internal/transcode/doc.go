// Package transcode converts a raw browser capture into the deliverable MP4:
// constant 30 fps, yuv420p, 1080x1920 lanczos scale, libx264 with a fixed
// quality factor and faststart, optionally seeking past leading black.
//
// The raw capture is removed only after ffmpeg succeeds; a failed transcode
// leaves it in place for inspection.
package transcode
