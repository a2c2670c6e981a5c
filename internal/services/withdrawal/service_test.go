package withdrawal

import (
	"context"
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

type fakeWithdrawalRepo struct {
	mu      sync.Mutex
	feePool int64
	items   map[uint]*models.AdminWithdrawal
	nextID  uint
}

func newFakeWithdrawalRepo(feePool int64) *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{feePool: feePool, items: make(map[uint]*models.AdminWithdrawal)}
}

func (r *fakeWithdrawalRepo) reservedLocked() int64 {
	var sum int64
	for _, w := range r.items {
		if w.Status == models.WithdrawalCompleted || w.Status == models.WithdrawalProcessing {
			sum += w.Amount
		}
	}
	return sum
}

func (r *fakeWithdrawalRepo) CreateReserved(_ context.Context, w *models.AdminWithdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.Amount > r.feePool-r.reservedLocked() {
		return repositories.ErrInsufficientFeePool
	}
	now := time.Now()
	w.Status = models.WithdrawalProcessing
	w.ProcessedAt = &now
	r.nextID++
	w.ID = r.nextID
	copied := *w
	r.items[w.ID] = &copied
	return nil
}

func (r *fakeWithdrawalRepo) Update(w *models.AdminWithdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *w
	r.items[w.ID] = &copied
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(id uint) (*models.AdminWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrWithdrawalNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWithdrawalRepo) GetByOrderCode(adminID uint, orderCode string) (*models.AdminWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.items {
		if w.AdminID == adminID && w.GatewayOrderCode == orderCode {
			copied := *w
			return &copied, nil
		}
	}
	return nil, repositories.ErrWithdrawalNotFound
}

func (r *fakeWithdrawalRepo) GetByOrderCodeAny(orderCode string) (*models.AdminWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.items {
		if w.GatewayOrderCode == orderCode {
			copied := *w
			return &copied, nil
		}
	}
	return nil, repositories.ErrWithdrawalNotFound
}

func (r *fakeWithdrawalRepo) List(_ context.Context, adminID uint, status models.WithdrawalStatus, limit, offset int) ([]models.AdminWithdrawal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AdminWithdrawal
	for _, w := range r.items {
		if adminID != 0 && w.AdminID != adminID {
			continue
		}
		if status != "" && w.Status != status {
			continue
		}
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawalRepo) SumReserved(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reservedLocked(), nil
}

func (r *fakeWithdrawalRepo) SumCompleted(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, w := range r.items {
		if w.Status == models.WithdrawalCompleted {
			sum += w.Amount
		}
	}
	return sum, nil
}

type fakeAccountRepo struct {
	account *models.AdminBankAccount
}

func (r *fakeAccountRepo) GetByAdminID(adminID uint) (*models.AdminBankAccount, error) {
	if r.account == nil || r.account.AdminID != adminID {
		return nil, repositories.ErrBankAccountNotFound
	}
	return r.account, nil
}

func (r *fakeAccountRepo) Save(account *models.AdminBankAccount) error {
	r.account = account
	return nil
}

// fakeLedger overrides only the method the withdrawal service uses.
type fakeLedger struct {
	ledger.Service
	fees int64
}

func (f *fakeLedger) AggregatePlatformFees(context.Context) (*repositories.WalletTotals, error) {
	return &repositories.WalletTotals{TotalPlatformFees: f.fees}, nil
}

type fakeGateway struct {
	mu            sync.Mutex
	payoutResult  *gateway.PaymentResult
	statusResult  *gateway.StatusResult
	payoutCalls   []gateway.PayoutRequest
	statusCalls   []string
	succeedPayout bool
}

func (g *fakeGateway) CreatePayout(_ context.Context, req gateway.PayoutRequest) (*gateway.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payoutCalls = append(g.payoutCalls, req)
	if g.payoutResult != nil {
		return g.payoutResult, nil
	}
	result := &gateway.PaymentResult{
		Success:       g.succeedPayout,
		OrderCode:     gateway.NewOrderCode(string(req.Kind)),
		TransactionID: "txn",
		Status:        gateway.OrderStatusProcessing,
	}
	if !g.succeedPayout {
		result.Error = "declined"
	}
	return result, nil
}

func (g *fakeGateway) CheckStatus(_ context.Context, orderCode string) (*gateway.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls = append(g.statusCalls, orderCode)
	return g.statusResult, nil
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

func adminAccount() *models.AdminBankAccount {
	return &models.AdminBankAccount{
		ID:            1,
		AdminID:       1,
		BankName:      "Vietcombank",
		BankCode:      "VCB",
		AccountNumber: "0123456789",
		AccountName:   "PLATFORM ADMIN",
		IsDefault:     true,
		IsActive:      true,
	}
}

func newTestService(feePool int64, repo *fakeWithdrawalRepo, gw *fakeGateway, pub *recordingPublisher) Service {
	return NewService(repo, &fakeAccountRepo{account: adminAccount()}, &fakeLedger{fees: feePool}, gw, pub)
}

func TestInitiateValidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}

	t.Run("below minimum", func(t *testing.T) {
		svc := newTestService(1000000, repo, gw, &recordingPublisher{})
		_, err := svc.Initiate(ctx, 1, models.MinWithdrawalAmount-1, "")
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("no bank account", func(t *testing.T) {
		svc := NewService(repo, &fakeAccountRepo{}, &fakeLedger{fees: 1000000}, gw, &recordingPublisher{})
		_, err := svc.Initiate(ctx, 1, 50000, "")
		assert.ErrorIs(t, err, ErrNoBankAccount)
	})

	t.Run("deactivated bank account", func(t *testing.T) {
		account := adminAccount()
		account.IsActive = false
		svc := NewService(repo, &fakeAccountRepo{account: account}, &fakeLedger{fees: 1000000}, gw, &recordingPublisher{})
		_, err := svc.Initiate(ctx, 1, 50000, "")
		assert.ErrorIs(t, err, ErrNoBankAccount)
	})

	t.Run("over available balance", func(t *testing.T) {
		svc := newTestService(1000000, repo, gw, &recordingPublisher{})
		_, err := svc.Initiate(ctx, 1, 2000000, "")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestInitiateReservesBeforePayout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}
	svc := newTestService(1000000, repo, gw, &recordingPublisher{})

	w, err := svc.Initiate(ctx, 1, 600000, "ops payout")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalProcessing, w.Status)
	assert.NotEmpty(t, w.GatewayOrderCode)
	assert.Equal(t, "VCB", w.Bank.BankCode)
	assert.NotNil(t, w.ProcessedAt)

	require.Len(t, gw.payoutCalls, 1)
	assert.Equal(t, gateway.PayoutKindAdmin, gw.payoutCalls[0].Kind)
	assert.EqualValues(t, 600000, gw.payoutCalls[0].Amount)

	// The processing withdrawal keeps its amount reserved.
	report, err := svc.AvailableBalance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 400000, report.Available)

	_, err = svc.Initiate(ctx, 1, 500000, "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestInitiateCompletesOnPaidResult(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{payoutResult: &gateway.PaymentResult{
		Success:       true,
		OrderCode:     "ADMIN_WD_1_abc",
		TransactionID: "payout-1",
		Status:        gateway.OrderStatusPaid,
	}}
	pub := &recordingPublisher{}
	svc := newTestService(1000000, repo, gw, pub)

	w, err := svc.Initiate(ctx, 1, 500000, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, w.Status)
	assert.NotNil(t, w.CompletedAt)
	assert.Equal(t, "payout-1", w.GatewayTransactionID)
	assert.Contains(t, pub.routes(), notification.RouteWithdrawalCompleted)

	report, err := svc.AvailableBalance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 500000, report.Available)
	assert.EqualValues(t, 500000, report.TotalWithdrawn)
}

func TestInitiateGatewayDeclineReleasesReservation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: false}
	pub := &recordingPublisher{}
	svc := newTestService(1000000, repo, gw, pub)

	w, err := svc.Initiate(ctx, 1, 600000, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalFailed, w.Status)
	assert.Equal(t, "declined", w.FailureReason)
	assert.Contains(t, pub.routes(), notification.RouteWithdrawalFailed)

	// The failed attempt no longer holds funds.
	report, err := svc.AvailableBalance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000000, report.Available)
}

func TestConcurrentInitiatesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}
	svc := newTestService(1000000, repo, gw, &recordingPublisher{})

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Initiate(ctx, 1, 600000, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestCheckStatusCompletesOnPaid(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}
	pub := &recordingPublisher{}
	svc := newTestService(1000000, repo, gw, pub)

	w, err := svc.Initiate(ctx, 1, 200000, "")
	require.NoError(t, err)

	gw.statusResult = &gateway.StatusResult{Success: true, Status: gateway.OrderStatusPaid}
	updated, err := svc.CheckStatus(ctx, 1, w.GatewayOrderCode)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Contains(t, pub.routes(), notification.RouteWithdrawalCompleted)

	// Terminal record skips the gateway on subsequent checks.
	calls := len(gw.statusCalls)
	again, err := svc.CheckStatus(ctx, 1, w.GatewayOrderCode)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, again.Status)
	assert.Len(t, gw.statusCalls, calls)
}

func TestCheckStatusFailsOnCancelled(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}
	pub := &recordingPublisher{}
	svc := newTestService(1000000, repo, gw, pub)

	w, err := svc.Initiate(ctx, 1, 200000, "")
	require.NoError(t, err)

	gw.statusResult = &gateway.StatusResult{Success: true, Status: gateway.OrderStatusCancelled}
	updated, err := svc.CheckStatus(ctx, 1, w.GatewayOrderCode)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalFailed, updated.Status)
	assert.Contains(t, pub.routes(), notification.RouteWithdrawalFailed)

	report, err := svc.AvailableBalance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000000, report.Available)
}

func TestReconcileOrder(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWithdrawalRepo(1000000)
	gw := &fakeGateway{succeedPayout: true}
	svc := newTestService(1000000, repo, gw, &recordingPublisher{})

	w, err := svc.Initiate(ctx, 1, 300000, "")
	require.NoError(t, err)

	updated, err := svc.ReconcileOrder(ctx, w.GatewayOrderCode, gateway.OrderStatusPaid, models.JSON{"status": "PAID"})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, updated.Status)

	// Reconciling a terminal order changes nothing.
	again, err := svc.ReconcileOrder(ctx, w.GatewayOrderCode, gateway.OrderStatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, again.Status)

	_, err = svc.ReconcileOrder(ctx, "ADMIN_WD_unknown", gateway.OrderStatusPaid, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
