package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"prepkit-sync-server/internal/domain"
)

// RemoteStore is the server-side write surface the engine drains against.
// Every method must be idempotent under at-least-once delivery: progress and
// profile writes are upserts by natural key, result inserts are deduplicated
// by client key.
type RemoteStore interface {
	ApplyModuleProgress(ctx context.Context, p domain.ModuleProgressPayload) error
	ApplyDrillResult(ctx context.Context, p domain.DrillResultPayload) error
	ApplyQuizResult(ctx context.Context, p domain.QuizResultPayload) error
	ApplyUserProfile(ctx context.Context, p domain.UserProfilePayload) error
	ApplyAlertView(ctx context.Context, p domain.AlertViewPayload) error
	ApplyContactAccess(ctx context.Context, p domain.ContactAccessPayload) error
}

// HTTPRemoteStore talks to the sync server's REST API. Any transport error or
// non-2xx response is reported the same way; the engine's retry budget is the
// only retry policy.
type HTTPRemoteStore struct {
	baseURL  string
	token    string
	deviceID string
	client   *http.Client
}

func NewHTTPRemoteStore(baseURL, token, deviceID string, client *http.Client) *HTTPRemoteStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemoteStore{
		baseURL:  baseURL,
		token:    token,
		deviceID: deviceID,
		client:   client,
	}
}

// envelope mirrors pkg/response.Response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (r *HTTPRemoteStore) do(ctx context.Context, method, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("X-Device-ID", r.deviceID)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("server rejected %s %s: %s", method, path, msg)
	}
	return nil
}

func (r *HTTPRemoteStore) ApplyModuleProgress(ctx context.Context, p domain.ModuleProgressPayload) error {
	return r.do(ctx, http.MethodPut, "/api/v1/progress/modules", p)
}

func (r *HTTPRemoteStore) ApplyDrillResult(ctx context.Context, p domain.DrillResultPayload) error {
	return r.do(ctx, http.MethodPost, "/api/v1/drills/results", domain.SubmitDrillResultRequest{
		ClientKey: p.ClientKey,
		DrillID:   p.DrillID,
		Score:     p.Score,
		MaxScore:  p.MaxScore,
		TimeSpent: p.TimeSpent,
	})
}

func (r *HTTPRemoteStore) ApplyQuizResult(ctx context.Context, p domain.QuizResultPayload) error {
	return r.do(ctx, http.MethodPost, "/api/v1/quizzes/results", domain.SubmitQuizResultRequest{
		ClientKey: p.ClientKey,
		QuizID:    p.QuizID,
		Score:     p.Score,
		MaxScore:  p.MaxScore,
	})
}

func (r *HTTPRemoteStore) ApplyUserProfile(ctx context.Context, p domain.UserProfilePayload) error {
	return r.do(ctx, http.MethodPut, "/api/v1/users/me/profile", p)
}

func (r *HTTPRemoteStore) ApplyAlertView(ctx context.Context, p domain.AlertViewPayload) error {
	return r.do(ctx, http.MethodPost, "/api/v1/alerts/"+p.AlertID+"/view", p)
}

func (r *HTTPRemoteStore) ApplyContactAccess(ctx context.Context, p domain.ContactAccessPayload) error {
	return r.do(ctx, http.MethodPost, "/api/v1/contacts/"+p.ContactID+"/access", p)
}
