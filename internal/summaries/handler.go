package summaries

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/concall/pkg/handlers"
	"github.com/JaimeStill/concall/pkg/routes"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler provides the summary download endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "summaries"),
	}
}

// Routes returns the route group for summary downloads. The group is
// mounted beneath the /download-summary module.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Download},
		},
	}
}

// Download renders a stored summary as a PDF report, or as an XLSX
// workbook when format=xlsx is requested.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondMessage(w, h.logger, http.StatusNotFound, "Summary not found or expired", err)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondMessage(w, h.logger, MapHTTPStatus(err), "Summary not found or expired", err)
		return
	}

	render, contentType, ext, label := RenderPDF, contentTypePDF, "pdf", "PDF"
	if r.URL.Query().Get("format") == "xlsx" {
		render, contentType, ext, label = RenderXLSX, contentTypeXLSX, "xlsx", "XLSX"
	}

	data, err := render(rec)
	if err != nil {
		h.logger.Error("summary render failed", "summary_id", id, "format", ext, "error", err)
		handlers.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   fmt.Sprintf("Failed to generate %s", label),
			"details": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(rec, ext)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
