package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeJudge serves the Judge0 create+poll protocol: POST returns a token,
// GET /{token} returns queued statuses a configurable number of times before
// the final result.
func fakeJudge(t *testing.T, queuedPolls int, final JudgeResult) *httptest.Server {
	t.Helper()
	polls := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case http.MethodGet:
			if polls < queuedPolls {
				polls++
				json.NewEncoder(w).Encode(JudgeResult{Status: JudgeStatus{ID: 2, Description: "Processing"}})
				return
			}
			json.NewEncoder(w).Encode(final)
		}
	}))
}

func newTestJudge(url string) *JudgeService {
	return &JudgeService{
		BaseURL:      url,
		Client:       &http.Client{Timeout: 5 * time.Second},
		pollInterval: time.Millisecond,
	}
}

func TestExecutePollsUntilFinalStatus(t *testing.T) {
	final := JudgeResult{
		Status: JudgeStatus{ID: JudgeStatusAccepted, Description: "Accepted"},
		Stdout: "42\n",
		Time:   "0.01",
	}
	srv := fakeJudge(t, 3, final)
	defer srv.Close()

	js := newTestJudge(srv.URL)
	result, err := js.Execute(context.Background(), "print(42)", 71, "", "42\n")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Accepted() {
		t.Errorf("result = %+v, want accepted", result)
	}
	if result.Stdout != "42\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
}

func TestExecuteTimesOutWhenResultStaysQueued(t *testing.T) {
	srv := fakeJudge(t, 1000, JudgeResult{})
	defer srv.Close()

	js := newTestJudge(srv.URL)
	_, err := js.Execute(context.Background(), "while true: pass", 71, "", "")
	if !errors.Is(err, ErrJudgeTimeout) {
		t.Errorf("err = %v, want ErrJudgeTimeout", err)
	}
}

func TestExecuteRejectsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	js := newTestJudge(srv.URL)
	if _, err := js.Execute(context.Background(), "x", 71, "", ""); err == nil {
		t.Error("expected an error when the judge returns no token")
	}
}
