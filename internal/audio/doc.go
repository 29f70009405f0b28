// Package audio provides the in-memory sample buffers every other package
// composes: fixed-rate 16-bit PCM with slice, overlay, concatenation, gain,
// low-pass filtering and fades, plus conversion to and from beep streams.
package audio
