// Package model provides the data structures shared by the editor packages.
// It defines the geometry types used by the canvas, the steps and connections of a pipeline graph,
// and the notices surfaced to the user.
package model
