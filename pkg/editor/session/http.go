package session

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const sessionsPath = "/catch/api-proxy/api/sessions/"

// HTTPService talks to the webserver session endpoints.
type HTTPService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPService creates a client for the API at cfg.APIURL.
func NewHTTPService(cfg Config, client *http.Client) *HTTPService {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &HTTPService{baseURL: strings.TrimRight(cfg.APIURL, "/"), httpClient: client}
}

type listResponse struct {
	Sessions []Session `json:"sessions"`
}

type startRequest struct {
	ProjectID  string `json:"project_uuid"`
	PipelineID string `json:"pipeline_uuid"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *HTTPService) ListSessions(ctx context.Context, projectID string) ([]Session, error) {
	query := url.Values{"project_uuid": {projectID}}

	var res listResponse
	if err := s.do(ctx, http.MethodGet, sessionsPath+"?"+query.Encode(), nil, &res); err != nil {
		return nil, err
	}

	return res.Sessions, nil
}

func (s *HTTPService) GetSession(ctx context.Context, projectID, pipelineID string) (*Session, error) {
	query := url.Values{"project_uuid": {projectID}, "pipeline_uuid": {pipelineID}}

	var res listResponse
	if err := s.do(ctx, http.MethodGet, sessionsPath+"?"+query.Encode(), nil, &res); err != nil {
		return nil, err
	}

	for i := range res.Sessions {
		if res.Sessions[i].PipelineID == pipelineID {
			return &res.Sessions[i], nil
		}
	}

	return nil, nil //nolint:nilnil // no session is not an error
}

func (s *HTTPService) StartSession(ctx context.Context, projectID, pipelineID string) error {
	body, err := sonic.Marshal(startRequest{ProjectID: projectID, PipelineID: pipelineID})
	if err != nil {
		return errors.Wrap(err, "unable to encode request")
	}

	return s.do(ctx, http.MethodPost, sessionsPath, body, nil)
}

func (s *HTTPService) StopSession(ctx context.Context, projectID, pipelineID string) error {
	return s.do(ctx, http.MethodDelete, sessionsPath+url.PathEscape(projectID)+"/"+url.PathEscape(pipelineID), nil, nil)
}

// do sends a request and decodes a JSON answer into out. A refused POST becomes a *StartError carrying the
// message of the service.
func (s *HTTPService) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "unable to create request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrServiceUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if method == http.MethodPost {
			var refusal errorResponse
			if sonic.Unmarshal(payload, &refusal) == nil && refusal.Message != "" {
				return NewStartError(refusal.Message)
			}

			return NewStartError(resp.Status)
		}

		return errors.Wrapf(ErrUnexpectedStatus, "%s %s: %d", method, path, resp.StatusCode)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	if err := sonic.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "unable to decode response")
	}

	return nil
}

var _ Service = (*HTTPService)(nil)
