package model

// NoticeLevel tells how a notice is shown.
type NoticeLevel int

const (
	// NoticeTransient is shown briefly and dismissed on its own.
	NoticeTransient NoticeLevel = iota
	// NoticeBlocking is an alert the user has to acknowledge.
	NoticeBlocking
)

// NavigationAction is an affordance offered alongside a notice.
type NavigationAction struct {
	Label string
	Route string
}

// Notice is a user visible message.
type Notice struct {
	Level   NoticeLevel
	Message string
	Action  *NavigationAction
}

// Notifier receives the notices produced by the editor components.
type Notifier interface {
	Notify(notice Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(notice Notice)

// Notify calls f(notice).
func (f NotifierFunc) Notify(notice Notice) { f(notice) }

// DiscardNotifier drops every notice.
var DiscardNotifier Notifier = NotifierFunc(func(Notice) {})
