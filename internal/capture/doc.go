// Package capture drives the recorded animation from start to a finalized
// raw video file.
package capture
