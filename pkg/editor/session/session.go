// Package session keeps an interactive session running for the pipeline open in the editor.
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Messages returned by the session service while an environment image is being built.
const (
	MessageEnvironmentsBuildInProgress = "environmentsBuildInProgress"
	MessageJupyterBuildInProgress      = "JupyterEnvironmentBuildInProgress"
)

// Status of a session as reported by the service.
type Status string

const (
	StatusNone      Status = ""
	StatusLaunching Status = "LAUNCHING"
	StatusRunning   Status = "RUNNING"
	StatusStopping  Status = "STOPPING"
)

// Session is the service view of a running session.
type Session struct {
	ProjectID  string `json:"project_uuid"`
	PipelineID string `json:"pipeline_uuid"`
	Status     Status `json:"status"`
	BaseURL    string `json:"base_url"`
}

// Service is the remote session API.
type Service interface {
	// ListSessions returns the sessions of a project.
	ListSessions(ctx context.Context, projectID string) ([]Session, error)
	// GetSession returns nil, nil when the pipeline has no session.
	GetSession(ctx context.Context, projectID, pipelineID string) (*Session, error)
	// StartSession returns a *StartError when the service refuses to start the session.
	StartSession(ctx context.Context, projectID, pipelineID string) error
	StopSession(ctx context.Context, projectID, pipelineID string) error
}

var (
	ErrServiceUnavailable = errors.New("session service unavailable")
	ErrUnexpectedStatus   = errors.New("unexpected status code")
)

// StartError is a refused start. Soft errors mean an environment build is in progress and the start can be
// retried once it is done.
type StartError struct {
	Message string
	Soft    bool
}

func (e *StartError) Error() string {
	return "unable to start session: " + e.Message
}

// NewStartError classifies a refusal message.
func NewStartError(message string) *StartError {
	return &StartError{
		Message: message,
		Soft:    message == MessageEnvironmentsBuildInProgress || message == MessageJupyterBuildInProgress,
	}
}

// Config of the session client and poller.
type Config struct {
	APIURL         string        `yaml:"api_url" validate:"omitempty,url"`
	PollInterval   time.Duration `yaml:"poll_interval" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		PollInterval:   3 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}
