// Package pipeline provides the in-memory pipeline graph edited on the canvas.
//
// A pipeline is a directed acyclic graph of steps. Each step is bound to a file and knows the ids of the steps
// connected to it, in the order those connections were drawn. The Graph type is the only owner of the steps: every
// mutation goes through one of its methods and is visible as soon as the method returns.
//
// The graph rejects any connection that would introduce a cycle, a self loop or a duplicate. Those rejections are
// reported with typed errors that all match ErrGraphInvariant, so callers dragging wires around can treat them as
// a normal, recoverable outcome instead of a failure.
package pipeline
