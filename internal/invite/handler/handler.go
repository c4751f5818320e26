package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"roster/internal/invite/csvinput"
	"roster/internal/invite/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
	request "roster/pkg/platform/middleware/request"
)

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 64 << 10

// Service is the flow API the handler drives.
type Service interface {
	OpenFlow(ctx context.Context, orgID id.OrgID, groupID *id.GroupID) (*models.Flow, error)
	GetFlow(ctx context.Context, flowID id.FlowID) (*models.Flow, error)
	AddText(ctx context.Context, flowID id.FlowID, raw string, clearErrored bool) (*models.Flow, error)
	QueueText(ctx context.Context, flowID id.FlowID, raw string, clearErrored bool) error
	UploadCSV(ctx context.Context, flowID id.FlowID, r io.Reader) (*models.Flow, error)
	SelectLearners(ctx context.Context, flowID id.FlowID, emails []string) (*models.SelectionResult, error)
	RemoveEmails(ctx context.Context, flowID id.FlowID, emails []string) (*models.Flow, error)
	Submit(ctx context.Context, flowID id.FlowID) (*models.InvitationBatch, error)
	CloseFlow(ctx context.Context, flowID id.FlowID) error
}

// Handler serves the invite flow endpoints. Callers mount it behind the
// admin token middleware.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register registers the invite flow routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/orgs/{orgID}/invite-flows", h.HandleOpenFlow)
	r.Route("/invite-flows/{flowID}", func(r chi.Router) {
		r.Get("/", h.HandleGetFlow)
		r.Delete("/", h.HandleCloseFlow)
		r.Post("/emails", h.HandleAddText)
		r.Put("/emails/draft", h.HandleQueueText)
		r.Delete("/emails", h.HandleRemoveEmails)
		r.Post("/emails/csv", h.HandleUploadCSV)
		r.Post("/selection", h.HandleSelectLearners)
		r.Post("/submit", h.HandleSubmit)
	})
}

func (h *Handler) HandleOpenFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[OpenFlowRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	flow, err := h.service.OpenFlow(ctx, orgID, req.groupID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to open invite flow")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toFlowResponse(flow, expanded(r)))
}

func (h *Handler) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	flow, err := h.service.GetFlow(ctx, flowID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to get invite flow")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFlowResponse(flow, expanded(r)))
}

func (h *Handler) HandleAddText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddTextRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	flow, err := h.service.AddText(ctx, flowID, req.Text, req.ClearErroredEmails)
	if err != nil {
		h.writeError(ctx, w, err, "failed to add emails")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFlowResponse(flow, expanded(r)))
}

// HandleQueueText accepts text as it is typed. It is applied once typing
// pauses, so the response carries no state; read the flow to see it.
func (h *Handler) HandleQueueText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddTextRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.QueueText(ctx, flowID, req.Text, req.ClearErroredEmails); err != nil {
		h.writeError(ctx, w, err, "failed to queue emails")
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, QueuedTextResponse{FlowID: flowID, Queued: true})
}

func (h *Handler) HandleUploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, csvinput.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(csvinput.MaxFileSize); err != nil {
		h.logger.WarnContext(ctx, "invalid csv upload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file must be a CSV of at most 1 MB sent as multipart field \"file\""))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file must have a .csv extension"))
		return
	}
	if header.Size > csvinput.MaxFileSize {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file must be at most 1 MB"))
		return
	}

	flow, err := h.service.UploadCSV(ctx, flowID, file)
	if err != nil {
		h.writeError(ctx, w, err, "failed to upload csv")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFlowResponse(flow, expanded(r)))
}

func (h *Handler) HandleSelectLearners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EmailsRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	result, err := h.service.SelectLearners(ctx, flowID, req.Emails)
	if err != nil {
		h.writeError(ctx, w, err, "failed to select learners")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{
		FlowResponse: toFlowResponse(result.Flow, expanded(r)),
		Skipped:      result.Skipped,
	})
}

func (h *Handler) HandleRemoveEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EmailsRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	flow, err := h.service.RemoveEmails(ctx, flowID, req.Emails)
	if err != nil {
		h.writeError(ctx, w, err, "failed to remove emails")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFlowResponse(flow, expanded(r)))
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	batch, err := h.service.Submit(ctx, flowID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to submit invitations")
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, toSubmitResponse(batch))
}

func (h *Handler) HandleCloseFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flowID, ok := h.flowID(w, r)
	if !ok {
		return
	}
	if err := h.service.CloseFlow(ctx, flowID); err != nil {
		h.writeError(ctx, w, err, "failed to close invite flow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) flowID(w http.ResponseWriter, r *http.Request) (id.FlowID, bool) {
	flowID, err := id.ParseFlowID(chi.URLParam(r, "flowID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FlowID{}, false
	}
	return flowID, true
}

// writeError logs at error level only for failures the caller cannot fix.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	attrs := []any{"request_id", request.GetRequestID(ctx), "error", err}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// expanded reports whether the caller asked for full lists ("Show less" state).
func expanded(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("expanded"))
	return err == nil && v
}
