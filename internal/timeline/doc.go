// Package timeline assembles a complete focus track from a task list.
//
// For every task the Assembler speaks an intro over the start of the
// background bed, appends one background minute per task minute with a
// spoken reminder and, in the final minute, a ten second countdown. In the
// second to last minute it lays a "coming up next" preview over the end of
// what has been appended so far. Each task closes with a cue and a pause.
//
// Overlays never change the track length: the total is the sum of the intro
// clips, the task minutes and the outros.
package timeline
