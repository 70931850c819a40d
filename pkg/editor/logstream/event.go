// Package logstream renders the live output of a task into a terminal.
//
// Output reaches the editor over a push channel shared by every stream. A Stream keeps the chunks of one identity,
// asks the server to replay its buffer on every subscription and resets the terminal when the task restarts.
package logstream

// Action is the kind of a push event.
type Action string

const (
	// ActionStarted is sent when the task (re)starts. The rendered output is cleared.
	ActionStarted Action = "started"
	// ActionOutput carries a live chunk of output.
	ActionOutput Action = "output"
	// ActionBuffer carries the whole buffered output of the identity, in reply to a buffer request.
	ActionBuffer Action = "buffer"
	// ActionBufferRequest is emitted by the client to ask for a buffer replay.
	ActionBufferRequest Action = "buffer-request"
)

// Event is a push event of the log channel.
type Event struct {
	Action   Action `json:"action"`
	Identity string `json:"identity"`
	Output   string `json:"output,omitempty"`
}
