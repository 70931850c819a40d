// Package editor ties the pipeline editing components together.
//
// An Editor owns one open pipeline: its graph, the viewport and the gesture state of the canvas, the session of the
// pipeline and the terminal showing its logs. Host events go through Dispatch, background work through Run.
package editor
