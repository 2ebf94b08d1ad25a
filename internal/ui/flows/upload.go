package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Its-donkey/formwire/internal/ui/model"
	"github.com/Its-donkey/formwire/internal/ui/submit"
	"github.com/Its-donkey/formwire/logging"
)

const (
	// UploadListEndpoint returns the signed-in user's uploads.
	UploadListEndpoint = "/upload/list"

	historyFailedMessage = "Failed to load history."
	historyTimeout       = 15 * time.Second
)

// CountWords returns the number of whitespace-separated words and the number
// of characters in the trimmed text.
func CountWords(text string) (words, characters int) {
	trimmed := strings.TrimSpace(text)
	return len(strings.Fields(trimmed)), len([]rune(trimmed))
}

// FormatCount renders the counter shown under the text box.
func FormatCount(text string) string {
	words, characters := CountWords(text)
	return fmt.Sprintf("%d words, %d characters", words, characters)
}

// HistoryView renders the upload history list.
type HistoryView interface {
	ShowUploads([]model.Upload)
	ShowHistoryError(message string)
}

// HistoryRefresher reloads the upload history after a successful upload.
type HistoryRefresher struct {
	Client   submit.Doer
	View     HistoryView
	Endpoint string
	Prepare  func(*http.Request)
	Logger   *logging.Logger
}

// Refresh fetches the history and renders it. Failures are rendered in the
// view, not returned to the user as notifications.
func (h *HistoryRefresher) Refresh(ctx context.Context) error {
	uploads, err := h.fetch(ctx)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("upload", "failed to load upload history", err, nil)
		}
		h.View.ShowHistoryError(historyFailedMessage)
		return err
	}
	h.View.ShowUploads(uploads)
	return nil
}

func (h *HistoryRefresher) fetch(ctx context.Context) ([]model.Upload, error) {
	endpoint := h.Endpoint
	if endpoint == "" {
		endpoint = UploadListEndpoint
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.Prepare != nil {
		h.Prepare(req)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request history: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var payload model.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if resp.StatusCode >= 300 || !payload.Success.Set {
		if msg := payload.ErrorText(); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("history request failed with status %d", resp.StatusCode)
	}
	return payload.Uploads, nil
}

func uploadOptions(refresher *HistoryRefresher, busy, idle string) submit.Options {
	return submit.Options{
		Validate: submit.Native(""),
		BusyText: busy,
		IdleText: idle,
		OnSuccess: func(submit.Response) {
			if refresher != nil {
				_ = refresher.Refresh(context.Background())
			}
		},
	}
}

// UploadText submits pasted text for analysis.
func UploadText(refresher *HistoryRefresher) submit.Options {
	opts := uploadOptions(refresher, "Analyzing...", "Analyze")
	opts.Validate = submit.All(opts.Validate, submit.Required("content"))
	return opts
}

// UploadFile submits a text file for analysis.
func UploadFile(refresher *HistoryRefresher) submit.Options {
	return uploadOptions(refresher, "Uploading...", "Upload File")
}
