package dispute

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/gateway"
	"carepay/internal/services/ledger"
	"carepay/internal/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	careseekerID = uint(100)
	caregiverID  = uint(200)
	adminID      = uint(1)
	bookingID    = uint(10)
)

type fakeDisputeRepo struct {
	disputes map[uint]*models.Dispute
	timeline []*models.DisputeTimelineEntry
	evidence []*models.DisputeEvidence
	notes    []*models.DisputeInternalNote
	nextID   uint
}

func newFakeDisputeRepo() *fakeDisputeRepo {
	return &fakeDisputeRepo{disputes: make(map[uint]*models.Dispute)}
}

func (r *fakeDisputeRepo) Create(d *models.Dispute) error {
	r.nextID++
	d.ID = r.nextID
	copied := *d
	r.disputes[d.ID] = &copied
	return nil
}

func (r *fakeDisputeRepo) GetByID(id uint, withNotes bool) (*models.Dispute, error) {
	d, ok := r.disputes[id]
	if !ok {
		return nil, repositories.ErrDisputeNotFound
	}
	copied := *d
	for _, e := range r.evidence {
		if e.DisputeID == id {
			copied.Evidence = append(copied.Evidence, *e)
		}
	}
	for _, entry := range r.timeline {
		if entry.DisputeID == id {
			copied.Timeline = append(copied.Timeline, *entry)
		}
	}
	if withNotes {
		for _, n := range r.notes {
			if n.DisputeID == id {
				copied.InternalNotes = append(copied.InternalNotes, *n)
			}
		}
	}
	return &copied, nil
}

func (r *fakeDisputeRepo) Update(d *models.Dispute) error {
	copied := *d
	copied.Evidence = nil
	copied.Timeline = nil
	copied.InternalNotes = nil
	r.disputes[d.ID] = &copied
	return nil
}

func (r *fakeDisputeRepo) AppendTimeline(entry *models.DisputeTimelineEntry) error {
	r.timeline = append(r.timeline, entry)
	return nil
}

func (r *fakeDisputeRepo) AppendEvidence(evidence *models.DisputeEvidence) error {
	r.evidence = append(r.evidence, evidence)
	return nil
}

func (r *fakeDisputeRepo) AppendInternalNote(note *models.DisputeInternalNote) error {
	r.notes = append(r.notes, note)
	return nil
}

func (r *fakeDisputeRepo) List(_ context.Context, filter repositories.DisputeFilter) ([]models.Dispute, int64, error) {
	var out []models.Dispute
	for _, d := range r.disputes {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && d.Priority != filter.Priority {
			continue
		}
		if filter.DisputeType != "" && d.DisputeType != filter.DisputeType {
			continue
		}
		if filter.Severity != "" && d.Severity != filter.Severity {
			continue
		}
		if filter.AssignedTo != 0 && (d.AssignedTo == nil || *d.AssignedTo != filter.AssignedTo) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(d.Title), needle) &&
				!strings.Contains(strings.ToLower(d.Description), needle) {
				continue
			}
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDisputeRepo) ListForUser(_ context.Context, userID uint, limit, offset int) ([]models.Dispute, int64, error) {
	var out []models.Dispute
	for _, d := range r.disputes {
		if d.ComplainantID == userID || d.RespondentID == userID {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeDisputeRepo) Stats(context.Context) (*repositories.DisputeStats, error) {
	stats := &repositories.DisputeStats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}}
	for _, d := range r.disputes {
		stats.Total++
		if d.Status.Terminal() {
			stats.Closed++
		} else {
			stats.Open++
		}
		stats.ByStatus[string(d.Status)]++
		stats.ByPriority[d.Priority]++
	}
	return stats, nil
}

func (r *fakeDisputeRepo) timelineActions(disputeID uint) []string {
	var out []string
	for _, entry := range r.timeline {
		if entry.DisputeID == disputeID {
			out = append(out, entry.Action)
		}
	}
	return out
}

type fakeBookingRepo struct {
	bookings map[uint]*models.Booking
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[uint]*models.Booking)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) GetByID(id uint) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) Update(b *models.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeBookingRepo) ListSettleable(context.Context, time.Time) ([]models.Booking, error) {
	return nil, nil
}

type fakePayoutGateway struct {
	calls   []gateway.PayoutRequest
	decline bool
}

func (g *fakePayoutGateway) CreatePayout(_ context.Context, req gateway.PayoutRequest) (*gateway.PaymentResult, error) {
	g.calls = append(g.calls, req)
	if g.decline {
		return &gateway.PaymentResult{Success: false, Error: "insufficient merchant balance"}, nil
	}
	return &gateway.PaymentResult{
		Success:   true,
		OrderCode: gateway.NewOrderCode(string(req.Kind)),
		Status:    gateway.OrderStatusProcessing,
	}, nil
}

type refundCall struct {
	caregiverID uint
	bookingID   uint
	amount      int64
}

// fakeLedger overrides only the entry points the dispute service uses.
type fakeLedger struct {
	ledger.Service
	feePool int64
	refunds []refundCall
	err     error
}

func (f *fakeLedger) GetWallet(_ context.Context, caregiverID uint) (*models.Wallet, error) {
	return &models.Wallet{CaregiverID: caregiverID, TotalPlatformFees: f.feePool}, nil
}

func (f *fakeLedger) RecordRefund(_ context.Context, caregiverID, bookingID uint, amount int64, description string) error {
	if f.err != nil {
		return f.err
	}
	f.refunds = append(f.refunds, refundCall{caregiverID: caregiverID, bookingID: bookingID, amount: amount})
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notification.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) routes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Route)
	}
	return out
}

type fixture struct {
	svc      Service
	repo     *fakeDisputeRepo
	gw       *fakePayoutGateway
	ledger   *fakeLedger
	pub      *recordingPublisher
	bookings *fakeBookingRepo
}

func newFixture() *fixture {
	repo := newFakeDisputeRepo()
	bookings := newFakeBookingRepo(&models.Booking{
		ID:            bookingID,
		CaregiverID:   caregiverID,
		CareseekerID:  careseekerID,
		TotalPrice:    1000000,
		Status:        models.BookingStatusCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	})
	gw := &fakePayoutGateway{}
	lg := &fakeLedger{feePool: 150000}
	pub := &recordingPublisher{}
	return &fixture{
		svc:      NewService(repo, bookings, lg, gw, pub),
		repo:     repo,
		gw:       gw,
		ledger:   lg,
		pub:      pub,
		bookings: bookings,
	}
}

func refundBankInfo() models.RefundBankInfo {
	return models.RefundBankInfo{
		AccountName:   "NGUYEN VAN A",
		AccountNumber: "0123456789",
		BankName:      "Vietcombank",
	}
}

func refundFiling() CreateInput {
	return CreateInput{
		BookingID:           bookingID,
		DisputeType:         models.DisputeTypeNoShow,
		Severity:            models.SeverityHigh,
		Title:               "Caregiver did not show up",
		Description:         "Waited two hours, no contact",
		RequestedResolution: models.ResolutionRefund,
		RequestedAmount:     1000000,
		RefundBankInfo:      refundBankInfo(),
	}
}

func TestCreateDispute(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := refundFiling()
	in.Evidence = []EvidenceInput{{Kind: models.EvidenceImage, URL: "https://cdn/x.jpg", Description: "empty doorstep"}}

	d, err := f.svc.Create(ctx, careseekerID, in)
	require.NoError(t, err)

	assert.Equal(t, models.DisputePending, d.Status)
	assert.Equal(t, careseekerID, d.ComplainantID)
	assert.Equal(t, caregiverID, d.RespondentID)
	assert.Equal(t, models.PriorityHigh, d.Priority)
	require.NotNil(t, d.Deadline)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, DisputeSLADays), *d.Deadline, time.Minute)

	require.Len(t, d.Evidence, 1)
	assert.Equal(t, careseekerID, d.Evidence[0].UploadedBy)
	assert.Equal(t, []string{actionCreated}, f.repo.timelineActions(d.ID))
	assert.Contains(t, f.pub.routes(), notification.RouteDisputeCreated)
}

func TestCreateDisputeValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown dispute type", func(t *testing.T) {
		f := newFixture()
		in := refundFiling()
		in.DisputeType = "vague_feeling"
		_, err := f.svc.Create(ctx, careseekerID, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing title", func(t *testing.T) {
		f := newFixture()
		in := refundFiling()
		in.Title = ""
		_, err := f.svc.Create(ctx, careseekerID, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture()
		in := refundFiling()
		in.BookingID = 999
		_, err := f.svc.Create(ctx, careseekerID, in)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("outsider cannot file", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, 555, refundFiling())
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("careseeker refund needs bank info", func(t *testing.T) {
		f := newFixture()
		in := refundFiling()
		in.RefundBankInfo = models.RefundBankInfo{}
		_, err := f.svc.Create(ctx, careseekerID, in)
		assert.ErrorIs(t, err, ErrRefundInfoRequired)
	})

	t.Run("caregiver filing skips bank info check", func(t *testing.T) {
		f := newFixture()
		in := CreateInput{
			BookingID:           bookingID,
			DisputeType:         models.DisputeTypePaymentIssue,
			Severity:            models.SeverityMedium,
			Title:               "Payment short",
			Description:         "Paid less than agreed",
			RequestedResolution: models.ResolutionRefund,
		}
		d, err := f.svc.Create(ctx, caregiverID, in)
		require.NoError(t, err)
		assert.Equal(t, careseekerID, d.RespondentID)
		assert.Equal(t, models.PriorityMedium, d.Priority)
	})
}

func TestRespond(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	t.Run("only the respondent may answer", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, careseekerID, d.ID, "not my problem", nil)
		assert.ErrorIs(t, err, ErrNotRespondent)
	})

	t.Run("message is required", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, caregiverID, d.ID, "", nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("response moves the case to review", func(t *testing.T) {
		updated, err := f.svc.Respond(ctx, caregiverID, d.ID, "I was at the hospital", []EvidenceInput{
			{Kind: models.EvidenceDocument, URL: "https://cdn/admission.pdf"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.DisputeUnderReview, updated.Status)
		assert.Equal(t, "I was at the hospital", updated.RespondentMessage)
		assert.NotNil(t, updated.RespondentRespondedAt)
		require.Len(t, updated.Evidence, 1)
		assert.Equal(t, caregiverID, updated.Evidence[0].UploadedBy)
		assert.Contains(t, f.repo.timelineActions(d.ID), actionResponded)
	})

	t.Run("closed case rejects responses", func(t *testing.T) {
		_, err := f.svc.Withdraw(ctx, careseekerID, d.ID, "")
		require.NoError(t, err)
		_, err = f.svc.Respond(ctx, caregiverID, d.ID, "too late", nil)
		assert.ErrorIs(t, err, ErrResponseClosed)
	})
}

func TestWithdraw(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, caregiverID, d.ID, "")
	assert.ErrorIs(t, err, ErrNotComplainant)

	withdrawn, err := f.svc.Withdraw(ctx, careseekerID, d.ID, "resolved privately")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeWithdrawn, withdrawn.Status)
	assert.NotNil(t, withdrawn.ClosedAt)
	assert.Contains(t, f.repo.timelineActions(d.ID), actionWithdrawn)

	_, err = f.svc.Withdraw(ctx, careseekerID, d.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAddEvidence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	err = f.svc.AddEvidence(ctx, 555, d.ID, EvidenceInput{Kind: models.EvidenceImage, URL: "https://cdn/y.jpg"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	err = f.svc.AddEvidence(ctx, caregiverID, d.ID, EvidenceInput{Kind: "hearsay", URL: "https://cdn/y.jpg"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = f.svc.AddEvidence(ctx, caregiverID, d.ID, EvidenceInput{Kind: models.EvidenceVideo, URL: "https://cdn/cam.mp4"})
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, careseekerID, d.ID, "")
	require.NoError(t, err)
	err = f.svc.AddEvidence(ctx, caregiverID, d.ID, EvidenceInput{Kind: models.EvidenceImage, URL: "https://cdn/z.jpg"})
	assert.ErrorIs(t, err, ErrDisputeClosed)
}

func TestAssign(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	assigned, err := f.svc.Assign(ctx, adminID, d.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.EqualValues(t, 42, *assigned.AssignedTo)
	assert.Equal(t, models.DisputeUnderReview, assigned.Status)
	assert.Contains(t, f.repo.timelineActions(d.ID), actionAssigned)
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("refund ruling approves the refund", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)

		decided, err := f.svc.Decide(ctx, adminID, d.ID, DecideInput{
			Decision:     models.DecisionFavorComplainant,
			Resolution:   models.ResolutionRefund,
			RefundAmount: 150000,
			Notes:        "no-show confirmed",
		})
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRefundApproved, decided.Status)
		require.NotNil(t, decided.Decision.DecidedBy)
		assert.Equal(t, adminID, *decided.Decision.DecidedBy)
		assert.NotNil(t, decided.Decision.DecidedAt)
		assert.Contains(t, f.pub.routes(), notification.RouteDisputeDecided)

		// A decision on a pending case records the review step first.
		actions := f.repo.timelineActions(d.ID)
		assert.Contains(t, actions, actionStatusChanged)
		assert.Contains(t, actions, actionDecided)
	})

	t.Run("ruling for the respondent rejects the case", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)

		decided, err := f.svc.Decide(ctx, adminID, d.ID, DecideInput{Decision: models.DecisionFavorRespondent})
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRejected, decided.Status)
		assert.NotNil(t, decided.ClosedAt)
	})

	t.Run("non-refund ruling resolves the case", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)

		decided, err := f.svc.Decide(ctx, adminID, d.ID, DecideInput{
			Decision:   models.DecisionNoFault,
			Resolution: models.ResolutionApology,
			Actions:    []string{models.ActionWarningIssued},
		})
		require.NoError(t, err)
		assert.Equal(t, models.DisputeResolved, decided.Status)
		assert.NotNil(t, decided.ClosedAt)
	})

	t.Run("unknown decision rejected", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)
		_, err = f.svc.Decide(ctx, adminID, d.ID, DecideInput{Decision: "coin_flip"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("closed case cannot be decided again", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)
		_, err = f.svc.Decide(ctx, adminID, d.ID, DecideInput{Decision: models.DecisionFavorRespondent})
		require.NoError(t, err)
		_, err = f.svc.Decide(ctx, adminID, d.ID, DecideInput{Decision: models.DecisionFavorComplainant})
		assert.ErrorIs(t, err, ErrDisputeClosed)
	})
}

func approvedRefund(t *testing.T, f *fixture) *models.Dispute {
	t.Helper()
	ctx := context.Background()
	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)
	decided, err := f.svc.Decide(ctx, adminID, d.ID, DecideInput{
		Decision:     models.DecisionFavorComplainant,
		Resolution:   models.ResolutionRefund,
		RefundAmount: 150000,
	})
	require.NoError(t, err)
	return decided
}

func TestProcessRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an approved refund", func(t *testing.T) {
		f := newFixture()
		d, err := f.svc.Create(ctx, careseekerID, refundFiling())
		require.NoError(t, err)
		_, err = f.svc.ProcessRefund(ctx, adminID, d.ID)
		assert.ErrorIs(t, err, ErrNotRefundable)
	})

	t.Run("payout then ledger then completion", func(t *testing.T) {
		f := newFixture()
		d := approvedRefund(t, f)

		done, err := f.svc.ProcessRefund(ctx, adminID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRefundCompleted, done.Status)
		assert.NotNil(t, done.ClosedAt)

		require.Len(t, f.gw.calls, 1)
		assert.Equal(t, gateway.PayoutKindCaregiver, f.gw.calls[0].Kind)
		assert.EqualValues(t, 150000, f.gw.calls[0].Amount)
		assert.Equal(t, "0123456789", f.gw.calls[0].Bank.AccountNumber)

		require.Len(t, f.ledger.refunds, 1)
		assert.Equal(t, refundCall{caregiverID: caregiverID, bookingID: bookingID, amount: 150000}, f.ledger.refunds[0])

		actions := f.repo.timelineActions(d.ID)
		assert.Contains(t, actions, actionRefundStarted)
		assert.Contains(t, actions, actionRefundDone)
		assert.Contains(t, f.pub.routes(), notification.RouteDisputeRefunded)
	})

	t.Run("gateway decline leaves the case retryable", func(t *testing.T) {
		f := newFixture()
		f.gw.decline = true
		d := approvedRefund(t, f)

		_, err := f.svc.ProcessRefund(ctx, adminID, d.ID)
		assert.ErrorIs(t, err, ErrRefundFailed)
		assert.Empty(t, f.ledger.refunds)

		// The case stays in refund_processing for another attempt.
		current, err := f.svc.Get(ctx, 0, true, d.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRefundProcessing, current.Status)
		assert.Nil(t, current.ClosedAt)
		assert.Contains(t, f.repo.timelineActions(d.ID), actionRefundFailed)
	})

	t.Run("retry after a declined payout completes the refund", func(t *testing.T) {
		f := newFixture()
		f.gw.decline = true
		d := approvedRefund(t, f)

		_, err := f.svc.ProcessRefund(ctx, adminID, d.ID)
		require.ErrorIs(t, err, ErrRefundFailed)

		f.gw.decline = false
		done, err := f.svc.ProcessRefund(ctx, adminID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRefundCompleted, done.Status)
		assert.NotNil(t, done.ClosedAt)
		assert.Len(t, f.gw.calls, 2)
		require.Len(t, f.ledger.refunds, 1)
		assert.Contains(t, f.pub.routes(), notification.RouteDisputeRefunded)
	})

	t.Run("refund beyond the fee pool is rejected before payout", func(t *testing.T) {
		f := newFixture()
		f.ledger.feePool = 100000
		d := approvedRefund(t, f)

		_, err := f.svc.ProcessRefund(ctx, adminID, d.ID)
		assert.ErrorIs(t, err, ErrFeePoolExhausted)
		assert.Empty(t, f.gw.calls)

		// No money moved and the approval still stands.
		current, err := f.svc.Get(ctx, 0, true, d.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DisputeRefundApproved, current.Status)
	})
}

func TestRateResolution(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	_, err = f.svc.RateResolution(ctx, careseekerID, d.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.svc.RateResolution(ctx, careseekerID, d.ID, 4, "")
	assert.ErrorIs(t, err, ErrNotClosed)

	_, err = f.svc.Decide(ctx, adminID, d.ID, DecideInput{Decision: models.DecisionFavorRespondent})
	require.NoError(t, err)

	rated, err := f.svc.RateResolution(ctx, careseekerID, d.ID, 2, "disagree with the ruling")
	require.NoError(t, err)
	assert.Equal(t, 2, rated.ComplainantSatisfaction.Rating)
	assert.NotNil(t, rated.ComplainantSatisfaction.RatedAt)

	_, err = f.svc.RateResolution(ctx, careseekerID, d.ID, 5, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyRated)

	rated, err = f.svc.RateResolution(ctx, caregiverID, d.ID, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 5, rated.RespondentSatisfaction.Rating)

	_, err = f.svc.RateResolution(ctx, 555, d.ID, 3, "")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRateResolutionRejectsWithdrawnCase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)
	_, err = f.svc.Withdraw(ctx, careseekerID, d.ID, "resolved privately")
	require.NoError(t, err)

	_, err = f.svc.RateResolution(ctx, careseekerID, d.ID, 4, "")
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestWithdrawEscalatedCase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, adminID, d.ID, adminID)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, adminID, d.ID, models.DisputeEscalated, "")
	require.NoError(t, err)

	withdrawn, err := f.svc.Withdraw(ctx, careseekerID, d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeWithdrawn, withdrawn.Status)
	assert.NotNil(t, withdrawn.ClosedAt)
}

func TestListAllFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)

	second := refundFiling()
	second.DisputeType = models.DisputeTypeLateArrival
	second.Severity = models.SeverityLow
	second.Title = "Arrived forty minutes late"
	_, err = f.svc.Create(ctx, careseekerID, second)
	require.NoError(t, err)

	bySeverity, total, err := f.svc.ListAll(ctx, repositories.DisputeFilter{Severity: models.SeverityHigh})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, bySeverity, 1)
	assert.Equal(t, first.ID, bySeverity[0].ID)

	bySearch, _, err := f.svc.ListAll(ctx, repositories.DisputeFilter{Search: "forty minutes"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, models.DisputeTypeLateArrival, bySearch[0].DisputeType)

	none, _, err := f.svc.ListAll(ctx, repositories.DisputeFilter{Severity: models.SeverityCritical})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.svc.Create(ctx, careseekerID, refundFiling())
	require.NoError(t, err)
	require.NoError(t, f.svc.AddInternalNote(ctx, adminID, d.ID, "complainant has two prior cases"))

	_, err = f.svc.Get(ctx, 555, false, d.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	asParty, err := f.svc.Get(ctx, caregiverID, false, d.ID)
	require.NoError(t, err)
	assert.Empty(t, asParty.InternalNotes)

	asAdmin, err := f.svc.Get(ctx, 0, true, d.ID)
	require.NoError(t, err)
	require.Len(t, asAdmin.InternalNotes, 1)
	assert.Equal(t, "complainant has two prior cases", asAdmin.InternalNotes[0].Note)

	_, err = f.svc.Get(ctx, careseekerID, false, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
