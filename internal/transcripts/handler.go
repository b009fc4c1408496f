package transcripts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/pkg/formatting"
	"github.com/JaimeStill/concall/pkg/handlers"
	"github.com/JaimeStill/concall/pkg/routes"
)

// FormField is the multipart field carrying the transcript PDF.
const FormField = "transcript"

// multipartOverhead is allowed on top of the file limit for boundaries and part headers.
const multipartOverhead = 64 << 10

// Handler provides the HTTP upload endpoint.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// AcceptedResponse is returned when an upload is queued.
type AcceptedResponse struct {
	JobID     uuid.UUID   `json:"job_id"`
	RequestID string      `json:"request_id"`
	Status    jobs.Status `json:"status"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "transcripts"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for transcript uploads.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/upload",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
		},
	}
}

// Upload accepts a multipart transcript PDF, queues a job for it, and responds
// 202 without waiting for the pipeline.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.tooLarge(w, ErrTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return
	}

	if !isPDF(header.Header.Get("Content-Type"), header.Filename, data) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotPDF)
		return
	}

	job := h.sys.Submit(Upload{
		RequestID: NewRequestID(),
		Filename:  header.Filename,
		Data:      data,
		PageCount: pageCount(h.logger, data),
	})

	handlers.RespondJSON(w, http.StatusAccepted, AcceptedResponse{
		JobID:     job.ID,
		RequestID: job.RequestID,
		Status:    job.Status,
	})
}

func (h *Handler) tooLarge(w http.ResponseWriter, cause error) {
	msg := fmt.Sprintf("%s. Max allowed size is %s.", ErrTooLarge, formatting.CompactBytes(h.maxUploadSize))
	handlers.RespondMessage(w, h.logger, http.StatusBadRequest, msg, cause)
}

// NewRequestID returns a short correlation id: the base-36 millisecond clock
// and six random base-36 characters.
func NewRequestID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + string(suffix)
}

func isPDF(declared, filename string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(detectContentType(declared, data))
	return err == nil && mediaType == "application/pdf"
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func pageCount(logger *slog.Logger, data []byte) int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return 0
	}
	return count
}
