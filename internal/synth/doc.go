// Package synth generates the procedural audio of a track: sine tones,
// binaural pairs, layered colored noise and short melodic cue sequences.
//
// Tones and cues are deterministic. Noise draws from the random source held
// by a Synthesizer, so a seeded Synthesizer reproduces the same samples.
package synth
