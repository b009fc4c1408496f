package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/internal/workflow"
	"github.com/JaimeStill/concall/pkg/extract"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticText string

func (s staticText) Text(context.Context, []byte) (string, error) {
	return string(s), nil
}

type countingLookPath struct {
	calls   atomic.Int32
	missing bool
}

func (l *countingLookPath) look(file string) (string, error) {
	l.calls.Add(1)
	if l.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

type stubProvider struct {
	payload any
	err     error
	seen    string
}

func (p *stubProvider) Summarize(_ context.Context, transcript string) (any, error) {
	p.seen = transcript
	return p.payload, p.err
}

type panicExtractor struct{}

func (panicExtractor) Extract(context.Context, []byte) (extract.Result, error) {
	panic("renderer crashed")
}

func validPayload() map[string]any {
	return map[string]any{
		"company":                "Acme Corp",
		"quarter":                "Q3 FY25",
		"financial_sentiment":    "positive",
		"confidence_level":       "medium",
		"key_highlights":         []any{"Revenue grew 14%", "Record order book"},
		"risks_and_concerns":     []any{"Currency headwinds"},
		"management_commitments": []any{"Debt free by FY27"},
		"guidance_outlook":       []any{"Reaffirmed double digit growth"},
		"analyst_focus_areas":    []any{"Margins"},
	}
}

// textWithAlnum returns transcript text containing n alphanumeric characters.
func textWithAlnum(n int) string {
	var sb strings.Builder
	for i := range n {
		sb.WriteByte("abcdefghij"[i%10])
		if i%5 == 4 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func newExtractor(t *testing.T, text string, lp *countingLookPath) *extract.Extractor {
	t.Helper()
	cfg := extract.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize extract config: %v", err)
	}
	e, err := extract.New(cfg, discardLogger(),
		extract.WithTextLayer(staticText(text)),
		extract.WithLookPath(lp.look),
	)
	if err != nil {
		t.Fatalf("extract.New: %v", err)
	}
	return e
}

func newRuntime(ex workflow.Extractor, p workflow.Summarizer) *workflow.Runtime {
	logger := discardLogger()
	return &workflow.Runtime{
		Extractor: ex,
		Provider:  p,
		Summaries: summaries.New(summaries.DefaultCapacity, logger),
		Jobs:      jobs.New(jobs.DefaultCapacity, logger),
		MaxChars:  12000,
		Logger:    logger,
	}
}

func execute(rt *workflow.Runtime) jobs.Job {
	job := rt.Jobs.Create("req-test")
	workflow.Execute(context.Background(), rt, workflow.Input{
		JobID:     job.ID,
		RequestID: job.RequestID,
		PDF:       []byte("%PDF-1.7"),
		PageCount: 3,
	})
	got, _ := rt.Jobs.Find(job.ID)
	return got
}

func TestExecuteTextLayerSkipsOCR(t *testing.T) {
	lp := &countingLookPath{}
	p := &stubProvider{payload: validPayload()}
	rt := newRuntime(newExtractor(t, textWithAlnum(200), lp), p)

	job := execute(rt)

	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %s, error = %+v", job.Status, job.Error)
	}
	if lp.calls.Load() != 0 {
		t.Error("ocr dependency probe should not run for usable text")
	}

	meta := job.Result.Meta
	if meta.ExtractionMethod != extract.MethodTextLayer {
		t.Errorf("extraction_method = %s, want pdf-parse", meta.ExtractionMethod)
	}
	if meta.RequestID != "req-test" || meta.PageCount != 3 || meta.MaxChars != 12000 {
		t.Errorf("meta = %+v", meta)
	}
	if meta.OCRPagesProcessed != 0 {
		t.Errorf("ocr_pages_processed = %d", meta.OCRPagesProcessed)
	}

	rec, err := rt.Summaries.Find(context.Background(), meta.SummaryID)
	if err != nil {
		t.Fatalf("summary not stored: %v", err)
	}
	if rec.Summary.Company != "Acme Corp" {
		t.Errorf("stored company = %s", rec.Summary.Company)
	}
	if job.Result.Summary.RuleBasedSentiment != summaries.SentimentPositive {
		t.Errorf("rule_based_sentiment = %s", job.Result.Summary.RuleBasedSentiment)
	}
	if p.seen == "" {
		t.Error("provider should receive the cleaned transcript")
	}
}

func TestExecuteScannedWithoutOCRTools(t *testing.T) {
	lp := &countingLookPath{missing: true}
	p := &stubProvider{payload: validPayload()}
	rt := newRuntime(newExtractor(t, "", lp), p)

	job := execute(rt)

	if job.Status != jobs.StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.Error.StatusCode != http.StatusBadRequest {
		t.Errorf("status_code = %d, want 400", job.Error.StatusCode)
	}
	if job.Error.Message != workflow.MsgDependencyMissing {
		t.Errorf("message = %s", job.Error.Message)
	}
	missing, ok := job.Error.Details.([]string)
	if !ok || len(missing) != 2 {
		t.Errorf("details = %#v, want both missing tools", job.Error.Details)
	}
	if p.seen != "" {
		t.Error("provider should not be called")
	}
}

func TestExecuteProviderWithoutCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"usageMetadata":{}}`)
	}))
	defer srv.Close()

	cfg := &provider.Config{BaseURL: srv.URL, APIKey: "k"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize provider config: %v", err)
	}

	rt := newRuntime(
		newExtractor(t, textWithAlnum(200), &countingLookPath{}),
		provider.New(cfg, discardLogger()),
	)

	job := execute(rt)

	if job.Status != jobs.StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.Error.StatusCode != http.StatusBadGateway {
		t.Errorf("status_code = %d, want 502", job.Error.StatusCode)
	}
	if job.Error.Message != workflow.MsgInvalidResponse {
		t.Errorf("message = %s", job.Error.Message)
	}
	if job.Error.RawOutput != nil {
		t.Errorf("raw_output = %q, want nil", *job.Error.RawOutput)
	}

	status, body := jobs.Response(job)
	if status != http.StatusBadGateway {
		t.Errorf("response status = %d", status)
	}
	b, _ := json.Marshal(body)
	if !strings.Contains(string(b), `"raw_output":null`) {
		t.Errorf("response body should carry raw_output null: %s", b)
	}
}

func TestExecuteValidationFailure(t *testing.T) {
	payload := validPayload()
	payload["confidence_level"] = "certain"
	rt := newRuntime(
		newExtractor(t, textWithAlnum(200), &countingLookPath{}),
		&stubProvider{payload: payload},
	)

	job := execute(rt)

	if job.Status != jobs.StatusFailed || job.Error.StatusCode != http.StatusBadGateway {
		t.Fatalf("job = %+v", job)
	}
	if job.Error.Message != workflow.MsgInvalidJSON {
		t.Errorf("message = %s", job.Error.Message)
	}
	details, _ := job.Error.Details.(string)
	if !strings.Contains(details, "confidence_level") {
		t.Errorf("details = %v", job.Error.Details)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	rt := newRuntime(panicExtractor{}, &stubProvider{payload: validPayload()})

	job := execute(rt)

	if job.Status != jobs.StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.Error.StatusCode != http.StatusInternalServerError {
		t.Errorf("status_code = %d, want 500", job.Error.StatusCode)
	}
	if job.Error.Message != workflow.MsgInternal {
		t.Errorf("message = %s", job.Error.Message)
	}
}

func TestRunTruncatesToBudget(t *testing.T) {
	p := &stubProvider{payload: validPayload()}
	rt := newRuntime(newExtractor(t, textWithAlnum(5000), &countingLookPath{}), p)
	rt.MaxChars = 1000

	result, err := workflow.Run(context.Background(), rt, workflow.Input{RequestID: "r"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.Meta.WasTruncated {
		t.Error("expected truncation")
	}
	if result.Meta.CleanedChars > 1000 {
		t.Errorf("cleaned_chars = %d, exceeds budget", result.Meta.CleanedChars)
	}
	if len([]rune(p.seen)) != result.Meta.CleanedChars {
		t.Errorf("provider saw %d chars, meta reports %d", len([]rune(p.seen)), result.Meta.CleanedChars)
	}
}
