package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Judge0 status ids: 1 = in queue, 2 = processing. Anything above is final.
const (
	judgeStatusInQueue    = 1
	judgeStatusProcessing = 2
	JudgeStatusAccepted   = 3
)

const (
	judgePollInterval = time.Second
	judgeMaxPolls     = 10
)

// ErrJudgeTimeout is returned when a submission never leaves the queue.
var ErrJudgeTimeout = errors.New("timed out waiting for submission result")

// JudgeStatus mirrors Judge0's status object.
type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// JudgeResult is one executed submission's outcome.
type JudgeResult struct {
	Token         string      `json:"token"`
	Status        JudgeStatus `json:"status"`
	Stdout        string      `json:"stdout"`
	Stderr        string      `json:"stderr"`
	CompileOutput string      `json:"compile_output"`
	Memory        float64     `json:"memory"`
	Time          string      `json:"time"`
}

// Accepted reports whether the run passed (matched the expected output).
func (r JudgeResult) Accepted() bool {
	return r.Status.ID == JudgeStatusAccepted
}

// JudgeService talks to the external code-execution judge (Judge0 behind
// RapidAPI). The judge itself is an external collaborator; this client only
// submits code and polls for the outcome.
type JudgeService struct {
	BaseURL string
	APIHost string
	APIKey  string
	Client  *http.Client

	// pollInterval is overridable for tests.
	pollInterval time.Duration
}

// NewJudgeService builds a client from the RAPID_API_* environment variables.
func NewJudgeService() *JudgeService {
	return &JudgeService{
		BaseURL:      os.Getenv("RAPID_API_URL"),
		APIHost:      os.Getenv("RAPID_API_HOST"),
		APIKey:       os.Getenv("RAPID_API_KEY"),
		Client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: judgePollInterval,
	}
}

type judgeSubmission struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output,omitempty"`
	Base64Encoded  bool   `json:"base64_encoded"`
}

// Execute runs code against one input and waits for the graded result.
func (js *JudgeService) Execute(ctx context.Context, code string, languageID int, stdin, expectedOutput string) (*JudgeResult, error) {
	body, err := json.Marshal(judgeSubmission{
		SourceCode:     code,
		LanguageID:     languageID,
		Stdin:          stdin,
		ExpectedOutput: expectedOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, js.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	js.setHeaders(req)
	req.Header.Set("content-type", "application/json")

	resp, err := js.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create judge submission: %w", err)
	}
	defer resp.Body.Close()

	var created JudgeResult
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode judge response: %w", err)
	}
	if created.Token == "" {
		return nil, errors.New("no token received from judge")
	}

	return js.pollResult(ctx, created.Token)
}

func (js *JudgeService) pollResult(ctx context.Context, token string) (*JudgeResult, error) {
	for retries := judgeMaxPolls; retries > 0; retries-- {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, js.BaseURL+"/"+token, nil)
		if err != nil {
			return nil, err
		}
		js.setHeaders(req)

		resp, err := js.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch judge result: %w", err)
		}

		var result JudgeResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode judge result: %w", err)
		}

		if result.Status.ID != judgeStatusInQueue && result.Status.ID != judgeStatusProcessing {
			return &result, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(js.pollInterval):
		}
	}
	return nil, ErrJudgeTimeout
}

func (js *JudgeService) setHeaders(req *http.Request) {
	req.Header.Set("X-RapidAPI-Host", js.APIHost)
	req.Header.Set("X-RapidAPI-Key", js.APIKey)
}
