package backup

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"innkeeper/infras/otel"
	"innkeeper/internal/domains/backup/model/dto"
	"innkeeper/internal/domains/backup/service"
	"innkeeper/shared"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
	"innkeeper/shared/timezone"
	"innkeeper/transport/http/response"
)

type Handler struct {
	service service.Backup
	otel    otel.Otel
}

func New(service service.Backup, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/backup", func(routerGroup chi.Router) {
		routerGroup.Get("/export.csv", handler.ExportCSV)
		routerGroup.Get("/export.ndjson", handler.ExportNDJSON)
		routerGroup.Post("/restore", handler.Restore)
	})
}

// ExportCSV streams the tenant's full record set as a flat CSV projection.
// @Summary Export reservations as CSV
// @Description Download every reservation for the authenticated tenant as a flattened CSV file.
// @Tags Backup
// @Produce text/csv
// @Success 200 {string} string "CSV export"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/backup/export.csv [get]
// @Security BearerAuth
func (handler *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportCSV")
	defer scope.End()

	tenantID := shared.TenantFromContext(ctx)

	out, stats, err := handler.service.ExportCSV(ctx, tenantID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export CSV")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("CSV export completed")

	writeExport(w, out, stats, constant.ContentTypeCSV, exportFilename(tenantID, "csv"))
}

// ExportNDJSON streams the tenant's full record set as NDJSON.
// @Summary Export reservations as NDJSON
// @Description Download every reservation for the authenticated tenant, one JSON object per line. Pass raw=true for byte-verbatim records suitable for a lossless restore.
// @Tags Backup
// @Produce application/x-ndjson
// @Param raw query bool false "Export raw stored objects instead of the normalized projection"
// @Success 200 {string} string "NDJSON export"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/backup/export.ndjson [get]
// @Security BearerAuth
func (handler *Handler) ExportNDJSON(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportNDJSON")
	defer scope.End()

	tenantID := shared.TenantFromContext(ctx)

	raw := false
	if rawValue := shared.ConvertStringToBool(r.URL.Query().Get("raw")); rawValue != nil {
		raw = *rawValue
	}

	out, stats, err := handler.service.ExportNDJSON(ctx, tenantID, raw)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export NDJSON")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("NDJSON export completed")

	writeExport(w, out, stats, constant.ContentTypeNDJSON, exportFilename(tenantID, "ndjson"))
}

// Restore ingests an uploaded NDJSON file and applies it under the requested
// mode. The upload is a multipart form so batch files stream from disk tools
// without base64 wrapping.
// @Summary Restore reservations from an NDJSON upload
// @Description Plan or apply an NDJSON restore. Modes: dry-run, create-only, overwrite. Overwrite requires confirmOverwrite=true and confirmText=OVERWRITE.
// @Tags Backup
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "NDJSON backup file"
// @Param mode formData string true "Restore mode (dry-run, create-only, overwrite)"
// @Param target formData string true "Restore target (default, restore-sandbox)"
// @Param sandboxId formData string false "Sandbox identifier, generated when omitted"
// @Param confirmOverwrite formData bool false "First overwrite confirmation factor"
// @Param confirmText formData string false "Second overwrite confirmation factor, must be OVERWRITE"
// @Param normalize formData bool false "Normalize records on write (default true; false only allowed in sandbox)"
// @Success 200 {object} response.Data[dto.RestoreSummary] "Restore summary"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/backup/restore [post]
// @Security BearerAuth
func (handler *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Restore")
	defer scope.End()

	tenantID := shared.TenantFromContext(ctx)

	req, err := parseRestoreForm(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse restore form")

		response.WithError(w, err)

		return
	}

	summary, err := handler.service.Restore(ctx, tenantID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to restore")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restore completed in mode " + string(summary.Mode))

	response.WithJSON(w, http.StatusOK, summary)
}

func parseRestoreForm(r *http.Request) (req dto.RestoreRequest, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, constant.RestoreMaxUploadBytes)

	if err = r.ParseMultipartForm(constant.RestoreMaxUploadBytes); err != nil {
		return req, failure.BadRequest(fmt.Errorf("failed to parse multipart form: %w", err)) //nolint:wrapcheck
	}

	file, _, err := r.FormFile(constant.RequestFormFile)
	if err != nil {
		return req, failure.BadRequest(fmt.Errorf("missing backup file: %w", err)) //nolint:wrapcheck
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return req, failure.BadRequest(fmt.Errorf("failed to read backup file: %w", err)) //nolint:wrapcheck
	}

	req = dto.RestoreRequest{
		Content:     content,
		Mode:        dto.RestoreMode(r.FormValue(constant.RequestFormMode)),
		Target:      dto.RestoreTarget(r.FormValue(constant.RequestFormTarget)),
		SandboxID:   r.FormValue(constant.RequestFormSandboxID),
		ConfirmText: r.FormValue(constant.RequestFormConfirmText),
		Normalize:   shared.ConvertStringToBool(r.FormValue(constant.RequestFormNormalize)),
	}

	if confirm := shared.ConvertStringToBool(r.FormValue(constant.RequestFormConfirmOverwrite)); confirm != nil {
		req.ConfirmOverwrite = *confirm
	}

	return req, nil
}

func writeExport(w http.ResponseWriter, out []byte, stats dto.ExportStats, contentType, filename string) {
	w.Header().Set(constant.RequestHeaderContentType, contentType)
	w.Header().Set(constant.RequestHeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set(constant.ResponseHeaderExportCount, strconv.Itoa(stats.ExportedCount))
	w.Header().Set(constant.ResponseHeaderExportKeyCount, strconv.Itoa(stats.KeyCount))
	w.Header().Set(constant.ResponseHeaderExportFailedCount, strconv.Itoa(len(stats.FailedKeys)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(out); err != nil {
		log.Error().Err(err).Msg("failed to write export body")
	}
}

func exportFilename(tenantID, extension string) string {
	return fmt.Sprintf("reservations-%s-%s.%s", tenantID, timezone.Now().Format(constant.DateFormat), extension)
}
