package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"roster/internal/invite/csvinput"
	"roster/internal/invite/metrics"
	"roster/internal/invite/models"
	"roster/internal/invite/reducer"
	"roster/internal/invite/session"
	"roster/internal/invite/store"
	"roster/pkg/attrs"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/email"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

const (
	DefaultFlowTTL = 30 * time.Minute
	tracerName     = "roster/internal/invite/service"
)

var errFlowSubmitted = dErrors.New(dErrors.CodeConflict, "invite flow already submitted")

type FlowStore interface {
	Create(ctx context.Context, flow *models.Flow) error
	Get(ctx context.Context, flowID id.FlowID) (*models.Flow, error)
	Update(ctx context.Context, flowID id.FlowID, fn store.UpdateFunc) (*models.Flow, error)
	Delete(ctx context.Context, flowID id.FlowID) error
}

type Directory interface {
	ListLearnerEmails(ctx context.Context, orgID id.OrgID) ([]string, error)
	ListMemberEmails(ctx context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error)
}

type Inviter interface {
	Invite(ctx context.Context, batch models.InvitationBatch) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// groupInvalidator is implemented by caching directories.
type groupInvalidator interface {
	InvalidateGroup(orgID id.OrgID, groupID id.GroupID)
}

// Service orchestrates invite flows: it loads the directory context, routes
// every edit through the flow's session, and hands accepted emails to the
// inviter on submit.
type Service struct {
	flows          FlowStore
	directory      Directory
	inviter        Inviter
	reducer        *reducer.Reducer
	limit          int
	flowTTL        time.Duration
	locks          *flowLocks
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	textDelay      time.Duration
	drafts         *textDrafts
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFlowTTL sets how long an idle flow survives. Non-positive values keep the default.
func WithFlowTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.flowTTL = ttl
		}
	}
}

// WithMaxEntries overrides the per-submission email limit.
func WithMaxEntries(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithTextDebounce sets how long queued free text waits for more typing
// before it is applied. Non-positive values keep the default.
func WithTextDebounce(delay time.Duration) Option {
	return func(s *Service) {
		if delay > 0 {
			s.textDelay = delay
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New constructs a Service.
func New(flows FlowStore, directory Directory, inviter Inviter, opts ...Option) (*Service, error) {
	if flows == nil {
		return nil, errors.New("flow store is required")
	}
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	if inviter == nil {
		return nil, errors.New("inviter is required")
	}
	s := &Service{
		flows:     flows,
		directory: directory,
		inviter:   inviter,
		limit:     models.MaxEmailEntryLimit,
		flowTTL:   DefaultFlowTTL,
		locks:     newFlowLocks(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		textDelay: session.DefaultDebounceDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reducer = reducer.New(reducer.WithLogger(s.logger), reducer.WithLimit(s.limit))
	s.drafts = newTextDrafts(s.textDelay)
	return s, nil
}

// OpenFlow starts a flow for an organization, optionally targeting an
// existing group whose members are then excluded from selection.
func (s *Service) OpenFlow(ctx context.Context, orgID id.OrgID, groupID *id.GroupID) (_ *models.Flow, err error) {
	ctx, end := s.startSpan(ctx, "OpenFlow", attribute.String("org_id", orgID.String()))
	defer func() { end(err) }()

	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "org_id is required")
	}

	var learners, members []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, lerr := s.directory.ListLearnerEmails(gctx, orgID)
		if lerr != nil {
			return mapDirectoryError(lerr, "failed to load organization learners")
		}
		learners = found
		return nil
	})
	if groupID != nil {
		g.Go(func() error {
			found, gerr := s.directory.ListMemberEmails(gctx, orgID, *groupID)
			if gerr != nil {
				if errors.Is(gerr, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "learner group not found")
				}
				return mapDirectoryError(gerr, "failed to load group members")
			}
			members = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	flow := models.NewFlow(id.NewFlowID(), orgID, groupID, learners, members, now, s.flowTTL)
	sess := s.sessionFor(ctx, flow)
	flow.State = sess.Dispatch(models.Initialize{GroupEnterpriseLearners: members})

	if err := s.flows.Create(ctx, flow); err != nil {
		return nil, mapFlowError(err, "failed to save invite flow")
	}

	s.logAudit(ctx, string(audit.EventInviteFlowOpened),
		"org_id", orgID.String(),
		"flow_id", flow.ID.String(),
		"count", len(members),
	)
	if s.metrics != nil {
		s.metrics.IncrementFlowsOpened()
		s.metrics.IncrementDispatched(models.KindInitialize, "")
	}
	return flow, nil
}

// GetFlow returns the current state of an open flow.
func (s *Service) GetFlow(ctx context.Context, flowID id.FlowID) (*models.Flow, error) {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return nil, mapFlowError(err, "failed to load invite flow")
	}
	return flow, nil
}

// AddText merges manually entered, newline-separated emails into the flow.
func (s *Service) AddText(ctx context.Context, flowID id.FlowID, raw string, clearErrored bool) (_ *models.Flow, err error) {
	ctx, end := s.startSpan(ctx, "AddText", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	return s.dispatch(ctx, flowID, func(*models.Flow) (models.Action, error) {
		return models.AddEmails{
			Emails:             email.ParseLines(raw),
			ClearErroredEmails: clearErrored,
			ActionType:         models.ActionTypeManualEntry,
		}, nil
	})
}

// QueueText stores free text typed into a flow and applies it as AddText once
// no newer text has been queued for the debounce delay. Submit applies any
// pending text first; CloseFlow drops it.
func (s *Service) QueueText(ctx context.Context, flowID id.FlowID, raw string, clearErrored bool) error {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return mapFlowError(err, "failed to load invite flow")
	}
	if flow.IsSubmitted() {
		return errFlowSubmitted
	}

	applyCtx := context.WithoutCancel(ctx)
	s.drafts.queue(flowID, func() {
		if _, err := s.AddText(applyCtx, flowID, raw, clearErrored); err != nil {
			s.logger.WarnContext(applyCtx, "failed to apply queued invite text",
				"flow_id", flowID.String(),
				"request_id", requestcontext.RequestID(applyCtx),
				"error", err,
			)
		}
	})
	return nil
}

// UploadCSV replaces the flow's errored emails with the contents of a CSV file.
func (s *Service) UploadCSV(ctx context.Context, flowID id.FlowID, r io.Reader) (_ *models.Flow, err error) {
	ctx, end := s.startSpan(ctx, "UploadCSV", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	text, err := csvinput.Decode(r)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, flowID, func(*models.Flow) (models.Action, error) {
		return models.AddEmails{
			Emails:             email.ParseLines(text),
			ClearErroredEmails: true,
			ActionType:         models.ActionTypeFileUpload,
		}, nil
	})
}

// SelectLearners adds learners picked from the organization list. Existing
// group members are skipped and reported back.
func (s *Service) SelectLearners(ctx context.Context, flowID id.FlowID, emails []string) (_ *models.SelectionResult, err error) {
	ctx, end := s.startSpan(ctx, "SelectLearners", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	skipped := []string{}
	flow, err := s.dispatch(ctx, flowID, func(current *models.Flow) (models.Action, error) {
		selected := make([]string, 0, len(emails))
		skipped = skipped[:0]
		for _, e := range emails {
			if current.State.IsGroupMember(e) {
				skipped = append(skipped, e)
				continue
			}
			selected = append(selected, e)
		}
		return models.AddEmails{
			Emails:             selected,
			ClearErroredEmails: false,
			ActionType:         models.ActionTypeListSelection,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &models.SelectionResult{Flow: flow, Skipped: skipped}, nil
}

// RemoveEmails drops accepted emails from the flow.
func (s *Service) RemoveEmails(ctx context.Context, flowID id.FlowID, emails []string) (_ *models.Flow, err error) {
	ctx, end := s.startSpan(ctx, "RemoveEmails", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	return s.dispatch(ctx, flowID, func(*models.Flow) (models.Action, error) {
		return models.RemoveEmails{Emails: emails}, nil
	})
}

// Submit invites every accepted email and ends the flow. A flow that cannot
// invite is rejected with its validation message and stays open.
func (s *Service) Submit(ctx context.Context, flowID id.FlowID) (_ *models.InvitationBatch, err error) {
	ctx, end := s.startSpan(ctx, "Submit", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	start := time.Now()
	defer s.observeOperation("submit", start)

	s.drafts.flush(flowID)
	unlock := s.locks.lock(flowID)
	defer unlock()

	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return nil, mapFlowError(err, "failed to load invite flow")
	}
	if flow.IsSubmitted() {
		return nil, errFlowSubmitted
	}

	if !flow.State.CanInvite {
		reason := submitRejection(flow.State)
		s.logAudit(ctx, string(audit.EventInviteSubmitRejected),
			"org_id", flow.OrgID.String(),
			"flow_id", flow.ID.String(),
			"reason", reason,
			"count", len(flow.State.ValidatedEmails),
		)
		s.incrementSubmission("rejected", 0)
		return nil, dErrors.New(dErrors.CodeValidation, reason)
	}

	batch := models.NewInvitationBatch(flow, requestcontext.Now(ctx))
	batch.RequestID = requestcontext.RequestID(ctx)
	batch.ActorID = requestcontext.ActorID(ctx)

	// Mark before delivery so a flow that outlives a failed delete cannot be
	// invited twice.
	if _, err := s.flows.Update(ctx, flowID, func(f *models.Flow) error {
		f.SubmittedBatchID = batch.ID
		return nil
	}); err != nil {
		return nil, mapFlowError(err, "failed to mark invite flow submitted")
	}

	if err := s.inviter.Invite(ctx, batch); err != nil {
		s.releaseSubmission(ctx, flowID)
		s.incrementSubmission("failed", 0)
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "invitation service unavailable")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to send invitations")
	}

	s.logAudit(ctx, string(audit.EventInvitesSubmitted),
		"org_id", flow.OrgID.String(),
		"flow_id", flow.ID.String(),
		"batch_id", batch.ID,
		"count", len(batch.Invitees),
	)
	s.incrementSubmission("submitted", len(batch.Invitees))

	s.drafts.discard(flowID)
	if err := s.flows.Delete(ctx, flowID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete submitted invite flow; it stays locked until it expires",
			"flow_id", flowID.String(),
			"batch_id", batch.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.FlowEnded()
	}
	if flow.GroupID != nil {
		if inv, ok := s.directory.(groupInvalidator); ok {
			inv.InvalidateGroup(flow.OrgID, *flow.GroupID)
		}
	}
	return &batch, nil
}

// releaseSubmission reopens a flow whose delivery failed so it can be retried.
func (s *Service) releaseSubmission(ctx context.Context, flowID id.FlowID) {
	if _, err := s.flows.Update(ctx, flowID, func(f *models.Flow) error {
		f.SubmittedBatchID = ""
		return nil
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to reopen invite flow after delivery failure",
			"flow_id", flowID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// CloseFlow discards a flow without inviting anyone.
func (s *Service) CloseFlow(ctx context.Context, flowID id.FlowID) (err error) {
	ctx, end := s.startSpan(ctx, "CloseFlow", attribute.String("flow_id", flowID.String()))
	defer func() { end(err) }()

	s.drafts.discard(flowID)
	unlock := s.locks.lock(flowID)
	defer unlock()

	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return mapFlowError(err, "failed to load invite flow")
	}
	if err := s.flows.Delete(ctx, flowID); err != nil {
		return mapFlowError(err, "failed to close invite flow")
	}

	s.logAudit(ctx, string(audit.EventInviteFlowClosed),
		"org_id", flow.OrgID.String(),
		"flow_id", flowID.String(),
		"count", len(flow.State.ValidatedEmails),
	)
	if s.metrics != nil {
		s.metrics.FlowEnded()
	}
	return nil
}

type actionBuilder func(flow *models.Flow) (models.Action, error)

// dispatch applies one action to a stored flow under the flow's lock.
func (s *Service) dispatch(ctx context.Context, flowID id.FlowID, build actionBuilder) (*models.Flow, error) {
	start := time.Now()
	unlock := s.locks.lock(flowID)
	defer unlock()

	var action models.Action
	updated, err := s.flows.Update(ctx, flowID, func(flow *models.Flow) error {
		if flow.IsSubmitted() {
			return errFlowSubmitted
		}
		var berr error
		action, berr = build(flow)
		if berr != nil {
			return berr
		}
		flow.State = s.sessionFor(ctx, flow).Dispatch(action)
		flow.Touch(requestcontext.Now(ctx), s.flowTTL)
		return nil
	})
	if err != nil {
		return nil, mapFlowError(err, "failed to update invite flow")
	}

	s.recordDispatch(action, updated.State)
	s.observeOperation(action.Kind(), start)
	return updated, nil
}

// sessionFor resumes the flow's session with an observer that reports every
// reduction. With the Redis store a WATCH retry reduces, and reports, again.
func (s *Service) sessionFor(ctx context.Context, flow *models.Flow) *session.Session {
	sess := session.New(
		session.WithLogger(s.logger),
		session.WithReducer(s.reducer),
		session.WithState(flow.State),
		session.WithOrgMembership(flow.OrgLearnerEmails),
	)
	sess.Subscribe(s.reportState(ctx, flow.ID))
	return sess
}

// reportState records a reduced state on the current span and in the debug log.
func (s *Service) reportState(ctx context.Context, flowID id.FlowID) session.Observer {
	return func(state models.State) {
		trace.SpanFromContext(ctx).AddEvent("invite.state_reduced", trace.WithAttributes(
			attribute.Int("accepted", len(state.ValidatedEmails)),
			attribute.Int("invalid", len(state.InvalidEmails)),
			attribute.Int("duplicate", len(state.DuplicateEmails)),
			attribute.Int("not_in_org", len(state.EmailsNotInOrg)),
			attribute.Bool("can_invite", state.CanInvite),
		))
		s.logger.DebugContext(ctx, "invite state reduced",
			"flow_id", flowID.String(),
			"accepted", len(state.ValidatedEmails),
			"invalid", len(state.InvalidEmails),
			"duplicate", len(state.DuplicateEmails),
			"not_in_org", len(state.EmailsNotInOrg),
			"is_valid_input", state.IsValidInput.String(),
			"can_invite", state.CanInvite,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) startSpan(ctx context.Context, op string, kv ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "invite."+op, trace.WithAttributes(kv...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			msg := dErrors.MessageOf(err)
			if msg == "" {
				msg = err.Error()
			}
			span.SetStatus(codes.Error, msg)
		}
		span.End()
	}
}

func submitRejection(state models.State) string {
	if state.ValidationError != nil {
		return state.ValidationError.Message
	}
	return "Add at least one email to invite."
}

func mapFlowError(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "invite flow not found")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeNotFound, "invite flow expired")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invite flow storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func mapDirectoryError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "learner directory unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
	if s.auditPublisher == nil {
		return
	}
	orgID, _ := id.ParseOrgID(attrs.ExtractString(attributes, "org_id"))
	decision := "allowed"
	if event == string(audit.EventInviteSubmitRejected) {
		decision = "denied"
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		OrgID:     orgID,
		Subject:   attrs.ExtractString(attributes, "flow_id"),
		Action:    event,
		Decision:  decision,
		Reason:    attrs.ExtractString(attributes, "reason"),
		Count:     attrs.ExtractInt(attributes, "count"),
		RequestID: requestID,
		ActorID:   requestcontext.ActorID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event", "event", event, "error", err)
	}
}

func (s *Service) recordDispatch(action models.Action, state models.State) {
	if s.metrics == nil || action == nil {
		return
	}
	actionType := ""
	if add, ok := action.(models.AddEmails); ok {
		actionType = string(add.ActionType)
		s.metrics.ObserveRejected(len(state.InvalidEmails), len(state.DuplicateEmails), len(state.EmailsNotInOrg))
	}
	s.metrics.IncrementDispatched(action.Kind(), actionType)
}

func (s *Service) incrementSubmission(outcome string, invited int) {
	if s.metrics != nil {
		s.metrics.IncrementSubmission(outcome, invited)
	}
}

func (s *Service) observeOperation(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
}
