// Package renewal drives the subscription renewal state machine: a fixed
// timer selects due subscriptions, pays each one from its subscriber's
// custodial wallet and resolves success or failure into persistent state and
// a notification.
package renewal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rajat-gondkar/pat3on/internal/chain"
	"github.com/rajat-gondkar/pat3on/internal/metrics"
	"github.com/rajat-gondkar/pat3on/internal/models"
	"github.com/rajat-gondkar/pat3on/internal/wallet"
	"github.com/rajat-gondkar/pat3on/pkg/logger"
)

// Defaults, overridable through configuration.
const (
	DefaultTickInterval    = 60 * time.Second
	DefaultLookaheadWindow = 5 * time.Minute
	DefaultRenewalPeriod   = 30 * 24 * time.Hour
)

type Scheduler struct {
	logger *logger.Logger

	repo     models.Repository
	balances models.BalanceReader
	executor models.TransferExecutor
	notifier models.NotificationSink

	interval time.Duration
	window   time.Duration
	period   time.Duration

	ticking atomic.Bool
}

func NewScheduler(
	repo models.Repository,
	balances models.BalanceReader,
	executor models.TransferExecutor,
	notifier models.NotificationSink,
	log *logger.Logger,
	interval, window, period time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if window <= 0 {
		window = DefaultLookaheadWindow
	}
	if period <= 0 {
		period = DefaultRenewalPeriod
	}
	return &Scheduler{
		logger:   log,
		repo:     repo,
		balances: balances,
		executor: executor,
		notifier: notifier,
		interval: interval,
		window:   window,
		period:   period,
	}
}

// Start runs one tick immediately, then one per interval, until the context
// is cancelled. A renewal attempt that is underway runs to completion; only
// the selection of new work stops.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting renewal scheduler ", "interval ", s.interval, " window ", s.window, " period ", s.period)

	s.TryTick(ctx, time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Renewal scheduler stopped")
			return
		case <-ticker.C:
			s.TryTick(ctx, time.Now())
		}
	}
}

// TryTick runs one tick unless the previous one is still in progress. The
// guard is what keeps a subscription from being selected by two overlapping
// ticks: the lookahead window is wider than the tick interval, so without it
// a slow tick would let the next one re-select the same rows.
func (s *Scheduler) TryTick(ctx context.Context, now time.Time) (Summary, bool) {
	if !s.ticking.CompareAndSwap(false, true) {
		s.logger.Warn("Previous tick still running, skipping this tick")
		metrics.TicksSkipped.Inc()
		return Summary{}, false
	}
	defer s.ticking.Store(false)
	return s.runTick(ctx, now), true
}

func (s *Scheduler) runTick(ctx context.Context, now time.Time) Summary {
	started := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(started).Seconds())
	}()

	horizon := now.Add(s.window)
	due, err := s.repo.DueSubscriptions(now, horizon)
	if err != nil {
		s.logger.Error("Failed to select due subscriptions ", "error ", err)
		return Summary{}
	}
	metrics.DueSubscriptions.Set(float64(len(due)))
	if len(due) == 0 {
		s.logger.Debug("No subscriptions due for renewal")
		return Summary{}
	}

	s.logger.Infof("Found %d subscription(s) due for renewal", len(due))

	summary := Summary{Processed: len(due)}
	for _, sub := range due {
		outcome := s.processOne(ctx, sub, now)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Result == ResultRenewed {
			summary.Succeeded++
			metrics.RenewalOutcomes.WithLabelValues(string(ResultRenewed), "").Inc()
		} else {
			summary.Failed++
			metrics.RenewalOutcomes.WithLabelValues(string(ResultDeleted), string(outcome.Reason)).Inc()
		}
	}

	s.logger.Infof("Renewal summary: %d successful, %d failed", summary.Succeeded, summary.Failed)
	return summary
}

// processOne takes a single subscription to its terminal state. Nothing may
// escape: any error becomes a classified deletion so the remaining
// subscriptions in the tick are unaffected.
func (s *Scheduler) processOne(ctx context.Context, sub *models.Subscription, now time.Time) Outcome {
	s.logger.Info("Processing renewal ", "subscription ", sub.ID)

	plan, err := s.repo.GetPlan(sub.PlanID)
	if err != nil {
		s.logger.Error("Renewal data integrity failure: plan unavailable ", "subscription ", sub.ID, " error ", err)
		return s.deleteSubscription(ctx, sub, nil, ReasonMissingData, fmt.Errorf("plan %s unavailable: %w", sub.PlanID, err))
	}
	subscriber, err := s.repo.GetUser(sub.SubscriberID)
	if err != nil {
		s.logger.Error("Renewal data integrity failure: subscriber unavailable ", "subscription ", sub.ID, " error ", err)
		return s.deleteSubscription(ctx, sub, plan, ReasonMissingData, fmt.Errorf("subscriber %s unavailable: %w", sub.SubscriberID, err))
	}
	author, err := s.repo.GetUser(sub.AuthorID)
	if err != nil {
		s.logger.Error("Renewal data integrity failure: author unavailable ", "subscription ", sub.ID, " error ", err)
		return s.deleteSubscription(ctx, sub, plan, ReasonMissingData, fmt.Errorf("author %s unavailable: %w", sub.AuthorID, err))
	}

	if !subscriber.HasCustodialWallet() || subscriber.EncryptedPrivateKey == "" || !author.HasCustodialWallet() {
		s.logger.Error("Renewal data integrity failure: missing custodial wallet ", "subscription ", sub.ID)
		return s.deleteSubscription(ctx, sub, plan, ReasonMissingWallet, errors.New("subscriber or author has no custodial wallet"))
	}

	balance, err := s.balances.TokenBalance(ctx, subscriber.WalletAddress)
	if err != nil {
		return s.deleteSubscription(ctx, sub, plan, ReasonChainError, err)
	}
	if balance.Cmp(plan.Price) < 0 {
		shortfall := plan.Price.Sub(balance)
		s.logger.Infof("Insufficient balance for subscription %s: have %s, need %s", sub.ID, balance, plan.Price)
		return s.deleteSubscriptionInsufficient(ctx, sub, plan, balance, shortfall)
	}

	receipt, err := s.executor.Transfer(ctx, subscriber.EncryptedPrivateKey, author.WalletAddress, plan.Price)
	if err != nil {
		var insufficient *chain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			// Balance moved between the precheck and the submit.
			return s.deleteSubscriptionInsufficient(ctx, sub, plan, insufficient.Balance, insufficient.Shortfall())
		}
		if errors.Is(err, wallet.ErrDecryptionFailed) {
			s.logger.Error("Wallet decryption failed during renewal, check the wallet encryption secret ",
				"subscription ", sub.ID, " subscriber ", sub.SubscriberID)
		}
		return s.deleteSubscription(ctx, sub, plan, ReasonChainError, err)
	}

	oldEndDate := sub.EndDate
	sub.StartDate = oldEndDate
	sub.EndDate = oldEndDate.Add(s.period)
	sub.TransactionHash = receipt.TxHash
	sub.RenewalFailureCount = 0
	attempt := now
	sub.LastRenewalAttempt = &attempt
	if err := s.repo.UpdateSubscription(sub); err != nil {
		// The transfer is already confirmed on chain; the record must not be
		// deleted over a persistence hiccup.
		s.logger.Error("Failed to persist renewed subscription ", "subscription ", sub.ID, " tx ", receipt.TxHash, " error ", err)
	}

	s.notify(ctx, &models.Notification{
		UserID:   sub.SubscriberID,
		Type:     models.NotificationTypeRenewed,
		Title:    "Subscription Renewed",
		Message: fmt.Sprintf("Your subscription to %s has been successfully renewed for %s %s. Next renewal: %s",
			plan.TierName, plan.Price, plan.Currency, sub.EndDate.Format("2006-01-02 15:04")),
		Priority:              models.PriorityLow,
		RelatedSubscriptionID: &sub.ID,
		RelatedPlanID:         &plan.ID,
	})

	s.logger.Info("Subscription renewed ", "subscription ", sub.ID, " until ", sub.EndDate)
	return Outcome{
		SubscriptionID: sub.ID,
		Result:         ResultRenewed,
		TxHash:         receipt.TxHash,
		NewEndDate:     sub.EndDate,
	}
}

// deleteSubscriptionInsufficient is the failure path for the expected
// business outcome: the notification names the exact shortfall.
func (s *Scheduler) deleteSubscriptionInsufficient(ctx context.Context, sub *models.Subscription, plan *models.Plan, balance, shortfall decimal.Decimal) Outcome {
	message := fmt.Sprintf(
		"Your subscription to %s has been deleted because your balance does not cover the renewal. You need %s %s but only have %s %s (short %s %s). Please resubscribe when you have sufficient funds.",
		plan.TierName, plan.Price, plan.Currency, balance, plan.Currency, shortfall, plan.Currency)

	s.notify(ctx, &models.Notification{
		UserID:        sub.SubscriberID,
		Type:          models.NotificationTypeRenewalFailed,
		Title:         "Subscription Deleted - Insufficient Balance",
		Message:       message,
		Priority:      models.PriorityHigh,
		RelatedPlanID: &plan.ID,
	})
	s.removeSubscription(sub)

	return Outcome{
		SubscriptionID: sub.ID,
		Result:         ResultDeleted,
		Reason:         ReasonInsufficientBalance,
		Err:            &chain.InsufficientBalanceError{Balance: balance, Required: plan.Price},
	}
}

// deleteSubscription is the failure path for everything else: data
// anomalies and chain failures.
func (s *Scheduler) deleteSubscription(ctx context.Context, sub *models.Subscription, plan *models.Plan, reason FailureReason, cause error) Outcome {
	notification := &models.Notification{
		UserID:   sub.SubscriberID,
		Type:     models.NotificationTypeRenewalFailed,
		Title:    "Subscription Deleted - Renewal Error",
		Message: fmt.Sprintf("Your subscription has been deleted due to an error during renewal. Please resubscribe manually. Error: %s",
			cause),
		Priority: models.PriorityHigh,
	}
	if plan != nil {
		notification.RelatedPlanID = &plan.ID
	}
	s.notify(ctx, notification)
	s.removeSubscription(sub)

	return Outcome{
		SubscriptionID: sub.ID,
		Result:         ResultDeleted,
		Reason:         reason,
		Err:            cause,
	}
}

// removeSubscription applies the terminal deletion: counters first, then the
// row. Counter updates are atomic in SQL so concurrent ticks for other
// subscriptions of the same plan cannot race them.
func (s *Scheduler) removeSubscription(sub *models.Subscription) {
	if err := s.repo.DecrementPlanSubscribers(sub.PlanID); err != nil {
		s.logger.Error("Failed to decrement plan subscriber count ", "plan ", sub.PlanID, " error ", err)
	}
	if err := s.repo.DecrementAuthorSubscribers(sub.AuthorID); err != nil {
		s.logger.Error("Failed to decrement author subscriber count ", "author ", sub.AuthorID, " error ", err)
	}
	if err := s.repo.DeleteSubscription(sub.ID); err != nil {
		s.logger.Error("Failed to delete subscription ", "subscription ", sub.ID, " error ", err)
		return
	}
	s.logger.Info("Subscription deleted ", "subscription ", sub.ID)
}

func (s *Scheduler) notify(ctx context.Context, n *models.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("Failed to send notification ", "user ", n.UserID, " error ", err)
	}
}
