// Package dispute owns the dispute lifecycle: filing, response, admin
// decision, refund processing and post-closure satisfaction ratings.
package dispute

import (
	"context"
	"fmt"
	"log"
	"time"

	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/gateway"
	"carepay/internal/services/ledger"
	"carepay/internal/services/notification"
)

// Gateway is the payout surface used for approved refunds.
type Gateway interface {
	CreatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PaymentResult, error)
}

// Service is the dispute case manager API.
type Service interface {
	Create(ctx context.Context, complainantID uint, in CreateInput) (*models.Dispute, error)
	Respond(ctx context.Context, userID uint, disputeID uint, message string, evidence []EvidenceInput) (*models.Dispute, error)
	Withdraw(ctx context.Context, userID uint, disputeID uint, reason string) (*models.Dispute, error)
	AddEvidence(ctx context.Context, userID uint, disputeID uint, in EvidenceInput) error

	Assign(ctx context.Context, adminID uint, disputeID uint, assigneeID uint) (*models.Dispute, error)
	UpdateStatus(ctx context.Context, adminID uint, disputeID uint, target models.DisputeStatus, description string) (*models.Dispute, error)
	Decide(ctx context.Context, adminID uint, disputeID uint, in DecideInput) (*models.Dispute, error)
	ProcessRefund(ctx context.Context, adminID uint, disputeID uint) (*models.Dispute, error)
	AddInternalNote(ctx context.Context, adminID uint, disputeID uint, note string) error

	RateResolution(ctx context.Context, userID uint, disputeID uint, rating int, feedback string) (*models.Dispute, error)

	Get(ctx context.Context, userID uint, isAdmin bool, disputeID uint) (*models.Dispute, error)
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Dispute, int64, error)
	ListAll(ctx context.Context, filter repositories.DisputeFilter) ([]models.Dispute, int64, error)
	Stats(ctx context.Context) (*repositories.DisputeStats, error)
}

type service struct {
	repo      repositories.DisputeRepository
	bookings  repositories.BookingRepository
	ledger    ledger.Service
	gateway   Gateway
	publisher notification.Publisher
}

// NewService creates a new dispute service.
func NewService(
	repo repositories.DisputeRepository,
	bookings repositories.BookingRepository,
	ledgerSvc ledger.Service,
	gw Gateway,
	publisher notification.Publisher,
) Service {
	if repo == nil {
		panic("dispute repository is required")
	}
	if bookings == nil {
		panic("booking repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if gw == nil {
		panic("gateway is required")
	}
	if publisher == nil {
		publisher = notification.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		bookings:  bookings,
		ledger:    ledgerSvc,
		gateway:   gw,
		publisher: publisher,
	}
}

// PriorityForSeverity derives the handling priority stamped at creation.
func PriorityForSeverity(severity string) string {
	if severity == models.SeverityCritical || severity == models.SeverityHigh {
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

func (s *service) Create(ctx context.Context, complainantID uint, in CreateInput) (*models.Dispute, error) {
	if !models.ValidDisputeType(in.DisputeType) || !models.ValidSeverity(in.Severity) ||
		!models.ValidResolution(in.RequestedResolution) || in.Title == "" || in.Description == "" {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookings.GetByID(in.BookingID)
	if err == repositories.ErrBookingNotFound {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	if complainantID != booking.CaregiverID && complainantID != booking.CareseekerID {
		return nil, ErrNotParticipant
	}
	respondentID := booking.OtherParticipant(complainantID)
	if respondentID == complainantID {
		return nil, ErrSelfDispute
	}

	if models.RefundRequested(in.RequestedResolution) && complainantID == booking.CareseekerID {
		if !in.RefundBankInfo.Complete() {
			return nil, ErrRefundInfoRequired
		}
	}

	deadline := time.Now().AddDate(0, 0, DisputeSLADays)
	dispute := &models.Dispute{
		ComplainantID:       complainantID,
		RespondentID:        respondentID,
		BookingID:           booking.ID,
		DisputeType:         in.DisputeType,
		Severity:            in.Severity,
		Title:               in.Title,
		Description:         in.Description,
		RequestedResolution: in.RequestedResolution,
		RequestedAmount:     in.RequestedAmount,
		RefundBankInfo:      in.RefundBankInfo,
		Status:              models.DisputePending,
		Priority:            PriorityForSeverity(in.Severity),
		Deadline:            &deadline,
	}
	if err := s.repo.Create(dispute); err != nil {
		return nil, err
	}

	for _, ev := range in.Evidence {
		if !models.ValidEvidenceKind(ev.Kind) || ev.URL == "" {
			continue
		}
		err := s.repo.AppendEvidence(&models.DisputeEvidence{
			DisputeID:   dispute.ID,
			Kind:        ev.Kind,
			URL:         ev.URL,
			Description: ev.Description,
			UploadedBy:  complainantID,
			UploadedAt:  time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.appendTimeline(dispute.ID, actionCreated, "Dispute filed", complainantID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notification.RouteDisputeCreated, dispute)
	return s.repo.GetByID(dispute.ID, false)
}

func (s *service) Respond(ctx context.Context, userID uint, disputeID uint, message string, evidence []EvidenceInput) (*models.Dispute, error) {
	dispute, err := s.get(disputeID, false)
	if err != nil {
		return nil, err
	}
	if userID != dispute.RespondentID {
		return nil, ErrNotRespondent
	}
	if !dispute.Status.CanAcceptResponse() {
		return nil, ErrResponseClosed
	}
	if message == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	dispute.RespondentMessage = message
	dispute.RespondentRespondedAt = &now
	if dispute.Status != models.DisputeUnderReview {
		dispute.Status = models.DisputeUnderReview
	}
	if err := s.repo.Update(dispute); err != nil {
		return nil, err
	}

	for _, ev := range evidence {
		if !models.ValidEvidenceKind(ev.Kind) || ev.URL == "" {
			continue
		}
		err := s.repo.AppendEvidence(&models.DisputeEvidence{
			DisputeID:   dispute.ID,
			Kind:        ev.Kind,
			URL:         ev.URL,
			Description: ev.Description,
			UploadedBy:  userID,
			UploadedAt:  time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.appendTimeline(dispute.ID, actionResponded, "Respondent submitted a response", userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(dispute.ID, false)
}

func (s *service) Withdraw(ctx context.Context, userID uint, disputeID uint, reason string) (*models.Dispute, error) {
	dispute, err := s.get(disputeID, false)
	if err != nil {
		return nil, err
	}
	if userID != dispute.ComplainantID {
		return nil, ErrNotComplainant
	}

	description := "Complainant withdrew the dispute"
	if reason != "" {
		description = fmt.Sprintf("Complainant withdrew the dispute: %s", reason)
	}
	if err := s.transition(dispute, models.DisputeWithdrawn, userID, actionWithdrawn, description); err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *service) AddEvidence(ctx context.Context, userID uint, disputeID uint, in EvidenceInput) error {
	dispute, err := s.get(disputeID, false)
	if err != nil {
		return err
	}
	if userID != dispute.ComplainantID && userID != dispute.RespondentID {
		return ErrNotParticipant
	}
	if dispute.Status.Terminal() {
		return ErrDisputeClosed
	}
	if !models.ValidEvidenceKind(in.Kind) || in.URL == "" {
		return ErrInvalidInput
	}

	err = s.repo.AppendEvidence(&models.DisputeEvidence{
		DisputeID:   dispute.ID,
		Kind:        in.Kind,
		URL:         in.URL,
		Description: in.Description,
		UploadedBy:  userID,
		UploadedAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	return s.appendTimeline(dispute.ID, actionEvidenceAdded, "Evidence added", userID)
}

func (s *service) Assign(ctx context.Context, adminID uint, disputeID uint, assigneeID uint) (*models.Dispute, error) {
	dispute, err := s.get(disputeID, true)
	if err != nil {
		return nil, err
	}
	if dispute.Status.Terminal() {
		return nil, ErrDisputeClosed
	}

	dispute.AssignedTo = &assigneeID
	if dispute.Status == models.DisputePending {
		dispute.Status = models.DisputeUnderReview
	}
	if err := s.repo.Update(dispute); err != nil {
		return nil, err
	}

	err = s.appendTimeline(dispute.ID, actionAssigned, fmt.Sprintf("Assigned to admin #%d", assigneeID), adminID)
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *service) UpdateStatus(ctx context.Context, adminID uint, disputeID uint, target models.DisputeStatus, description string) (*models.Dispute, error) {
	if !target.Valid() {
		return nil, ErrInvalidInput
	}
	dispute, err := s.get(disputeID, true)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = fmt.Sprintf("Status changed to %s", target)
	}
	if err := s.transition(dispute, target, adminID, actionStatusChanged, description); err != nil {
		return nil, err
	}
	return dispute, nil
}

// Decide stamps the admin ruling and routes the dispute to its outcome
// state: an approved refund goes through the refund pipeline, a ruling for
// the respondent rejects the case, anything else resolves it.
func (s *service) Decide(ctx context.Context, adminID uint, disputeID uint, in DecideInput) (*models.Dispute, error) {
	if !models.ValidDecision(in.Decision) {
		return nil, ErrInvalidInput
	}

	dispute, err := s.get(disputeID, true)
	if err != nil {
		return nil, err
	}
	if dispute.Status.Terminal() {
		return nil, ErrDisputeClosed
	}

	// A pending case passes through review before the ruling lands, so the
	// audit trail always shows the intermediate step.
	if dispute.Status == models.DisputePending {
		if err := s.transition(dispute, models.DisputeUnderReview, adminID, actionStatusChanged, "Review started"); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	dispute.Decision = models.AdminDecision{
		Decision:           in.Decision,
		Resolution:         in.Resolution,
		RefundAmount:       in.RefundAmount,
		CompensationAmount: in.CompensationAmount,
		Actions:            models.StringSlice(in.Actions),
		DecidedBy:          &adminID,
		DecidedAt:          &now,
		Notes:              in.Notes,
	}

	var target models.DisputeStatus
	switch {
	case in.RefundApproved():
		target = models.DisputeRefundApproved
	case in.Decision == models.DecisionFavorRespondent:
		target = models.DisputeRejected
	default:
		target = models.DisputeResolved
	}

	description := fmt.Sprintf("Decision: %s", in.Decision)
	if err := s.transition(dispute, target, adminID, actionDecided, description); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.RouteDisputeDecided, dispute)
	return dispute, nil
}

// ProcessRefund pays out an approved refund. The gateway payout runs first;
// only a confirmed payout writes the ledger entry and completes the case. A
// failed payout leaves the dispute in refund_processing, and a later call
// picks it up from there for another attempt.
func (s *service) ProcessRefund(ctx context.Context, adminID uint, disputeID uint) (*models.Dispute, error) {
	dispute, err := s.get(disputeID, true)
	if err != nil {
		return nil, err
	}
	switch dispute.Status {
	case models.DisputeRefundApproved, models.DisputeRefundProcessing:
	default:
		return nil, ErrNotRefundable
	}
	amount := dispute.Decision.RefundAmount
	if amount <= 0 {
		return nil, ErrNotRefundable
	}
	if !dispute.RefundBankInfo.Complete() {
		return nil, ErrRefundInfoRequired
	}

	booking, err := s.bookings.GetByID(dispute.BookingID)
	if err != nil {
		return nil, err
	}

	// The refund draws on the respondent's collected platform fees; no money
	// leaves the gateway unless the pool can cover the ledger entry.
	wallet, err := s.ledger.GetWallet(ctx, booking.CaregiverID)
	if err != nil {
		return nil, err
	}
	if wallet.TotalPlatformFees < amount {
		return nil, ErrFeePoolExhausted
	}

	if dispute.Status == models.DisputeRefundApproved {
		err = s.transition(dispute, models.DisputeRefundProcessing, adminID, actionRefundStarted,
			fmt.Sprintf("Refund of %d started", amount))
		if err != nil {
			return nil, err
		}
	}

	result, err := s.gateway.CreatePayout(ctx, gateway.PayoutRequest{
		Kind:        gateway.PayoutKindCaregiver,
		Amount:      amount,
		Description: fmt.Sprintf("Refund for dispute #%d", dispute.ID),
		Bank: models.BankDetails{
			BankName:      dispute.RefundBankInfo.BankName,
			AccountNumber: dispute.RefundBankInfo.AccountNumber,
			AccountName:   dispute.RefundBankInfo.AccountName,
		},
	})
	if err != nil || !result.Success {
		reason := "gateway error"
		if err != nil {
			reason = err.Error()
		} else if result.Error != "" {
			reason = result.Error
		}
		if tlErr := s.appendTimeline(dispute.ID, actionRefundFailed, fmt.Sprintf("Refund payout failed: %s", reason), adminID); tlErr != nil {
			log.Printf("failed to record refund failure on dispute %d: %v", dispute.ID, tlErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrRefundFailed, reason)
	}

	err = s.ledger.RecordRefund(ctx, booking.CaregiverID, booking.ID, amount,
		fmt.Sprintf("Refund for dispute #%d", dispute.ID))
	if err != nil {
		return nil, err
	}

	err = s.transition(dispute, models.DisputeRefundCompleted, adminID, actionRefundDone,
		fmt.Sprintf("Refund of %d completed (order %s)", amount, result.OrderCode))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notification.RouteDisputeRefunded, dispute)
	return dispute, nil
}

func (s *service) AddInternalNote(ctx context.Context, adminID uint, disputeID uint, note string) error {
	if note == "" {
		return ErrInvalidInput
	}
	dispute, err := s.get(disputeID, true)
	if err != nil {
		return err
	}
	return s.repo.AppendInternalNote(&models.DisputeInternalNote{
		DisputeID: dispute.ID,
		Note:      note,
		AddedBy:   adminID,
		AddedAt:   time.Now(),
	})
}

func (s *service) RateResolution(ctx context.Context, userID uint, disputeID uint, rating int, feedback string) (*models.Dispute, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	dispute, err := s.get(disputeID, false)
	if err != nil {
		return nil, err
	}
	if !dispute.Status.Rateable() {
		return nil, ErrNotClosed
	}

	now := time.Now()
	switch userID {
	case dispute.ComplainantID:
		if dispute.ComplainantSatisfaction.RatedAt != nil {
			return nil, ErrAlreadyRated
		}
		dispute.ComplainantSatisfaction = models.Satisfaction{Rating: rating, Feedback: feedback, RatedAt: &now}
	case dispute.RespondentID:
		if dispute.RespondentSatisfaction.RatedAt != nil {
			return nil, ErrAlreadyRated
		}
		dispute.RespondentSatisfaction = models.Satisfaction{Rating: rating, Feedback: feedback, RatedAt: &now}
	default:
		return nil, ErrNotParticipant
	}

	if err := s.repo.Update(dispute); err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *service) Get(ctx context.Context, userID uint, isAdmin bool, disputeID uint) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(disputeID, isAdmin)
	if err == repositories.ErrDisputeNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && userID != dispute.ComplainantID && userID != dispute.RespondentID {
		return nil, ErrNotAuthorized
	}
	return dispute, nil
}

func (s *service) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Dispute, int64, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *service) ListAll(ctx context.Context, filter repositories.DisputeFilter) ([]models.Dispute, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Stats(ctx context.Context) (*repositories.DisputeStats, error) {
	return s.repo.Stats(ctx)
}

func (s *service) get(disputeID uint, withNotes bool) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(disputeID, withNotes)
	if err == repositories.ErrDisputeNotFound {
		return nil, ErrNotFound
	}
	return dispute, err
}

// transition moves the dispute to target, stamps ClosedAt on terminal
// states, persists it and appends the audit entry.
func (s *service) transition(dispute *models.Dispute, target models.DisputeStatus, actorID uint, action, description string) error {
	if !dispute.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	dispute.Status = target
	if target.Terminal() && dispute.ClosedAt == nil {
		now := time.Now()
		dispute.ClosedAt = &now
	}
	if err := s.repo.Update(dispute); err != nil {
		return err
	}
	return s.appendTimeline(dispute.ID, action, description, actorID)
}

func (s *service) appendTimeline(disputeID uint, action, description string, actorID uint) error {
	return s.repo.AppendTimeline(&models.DisputeTimelineEntry{
		DisputeID:   disputeID,
		Action:      action,
		Description: description,
		PerformedBy: actorID,
		PerformedAt: time.Now(),
	})
}

func (s *service) publish(ctx context.Context, route string, dispute *models.Dispute) {
	event := notification.NewEvent(route, map[string]interface{}{
		"dispute_id":     dispute.ID,
		"booking_id":     dispute.BookingID,
		"complainant_id": dispute.ComplainantID,
		"respondent_id":  dispute.RespondentID,
		"status":         string(dispute.Status),
		"priority":       dispute.Priority,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event: %v", route, err)
	}
}
