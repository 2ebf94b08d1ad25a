package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Its-donkey/formwire/internal/ui/model"
	"github.com/Its-donkey/formwire/internal/ui/submit"
	"github.com/Its-donkey/formwire/logging"
)

const (
	LatestAnalysisEndpoint = "/api/latest_analysis"
	AnalysisPathPrefix     = "/analysis/"
	UploadPage             = "/upload"
)

// LatestAnalysis opens the newest analysis result, falling back to the upload
// page when there is none or the lookup fails.
type LatestAnalysis struct {
	Client    submit.Doer
	Navigator submit.Navigator
	Endpoint  string
	Prepare   func(*http.Request)
	Logger    *logging.Logger

	state submit.State
}

// Open resolves the target and navigates to it. It returns
// submit.ErrDuplicateSubmission while a lookup is already running.
func (l *LatestAnalysis) Open(ctx context.Context) (string, error) {
	if !l.state.Begin("latest_analysis") {
		return "", submit.ErrDuplicateSubmission
	}
	defer l.state.End()

	target, err := l.resolve(ctx)
	if err != nil {
		if l.Logger != nil {
			l.Logger.Warn("navigation", "latest analysis lookup failed", map[string]any{"error": err.Error()})
		}
		target = UploadPage
	}
	if l.Navigator != nil {
		l.Navigator.Navigate(target)
	}
	return target, nil
}

// Busy reports whether a lookup is running.
func (l *LatestAnalysis) Busy() bool {
	return l.state.InFlight()
}

func (l *LatestAnalysis) resolve(ctx context.Context) (string, error) {
	endpoint := l.Endpoint
	if endpoint == "" {
		endpoint = LatestAnalysisEndpoint
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if l.Prepare != nil {
		l.Prepare(req)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request latest analysis: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read latest analysis: %w", err)
	}
	var payload model.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode latest analysis: %w", err)
	}
	path := strings.Trim(strings.TrimSpace(payload.URLPath), "/")
	if !payload.Success.Set || path == "" {
		return UploadPage, nil
	}
	return AnalysisPathPrefix + url.PathEscape(path), nil
}
