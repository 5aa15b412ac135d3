// Package scheduler implements the Account Scheduler of spec §4.1: a
// control loop that fans out one poller per enabled Account, streams
// batches off each account's IMAP client, canonicalizes them, and commits
// progress incrementally.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/mailserver/interfaces"
	"github.com/customeros/mailserver/internal/config"
	"github.com/customeros/mailserver/internal/enum"
	"github.com/customeros/mailserver/internal/logger"
	"github.com/customeros/mailserver/internal/models"
	"github.com/customeros/mailserver/internal/policy"
	"github.com/customeros/mailserver/services/canonicalize"
	"github.com/customeros/mailserver/services/imapclient"
)

// Scheduler drives the control loop of spec §4.1 on a robfig/cron ticker,
// using cron.SkipIfStillRunning so a slow cycle is never overlapped by the
// next tick; an explicit back-off window absorbs cycle-level errors.
type Scheduler struct {
	cfg       config.SchedulerConfig
	extractCfg config.ExtractionConfig
	log       logger.Logger
	accounts  interfaces.AccountRepository
	pipeline  *canonicalize.Pipeline

	cron *cronv3.Cron

	mu          sync.Mutex
	running     bool
	backoffUntil time.Time

	clientsMu sync.Mutex
	clients   map[clientKey]*imapclient.Client

	statusMu sync.Mutex
	statuses map[uint]interfaces.AccountStatus
}

func New(
	cfg config.SchedulerConfig,
	extractCfg config.ExtractionConfig,
	log logger.Logger,
	accounts interfaces.AccountRepository,
	pipeline *canonicalize.Pipeline,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		extractCfg: extractCfg,
		log:        log,
		accounts:   accounts,
		pipeline:   pipeline,
		clients:    make(map[clientKey]*imapclient.Client),
		statuses:   make(map[uint]interfaces.AccountStatus),
	}
}

// Start begins the control loop (spec §4.1 step 1).
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	c := cronv3.New(cronv3.WithChain(cronv3.SkipIfStillRunning(cronv3.DefaultLogger), cronv3.Recover(cronv3.DefaultLogger)))
	spec := fmt.Sprintf("@every %ds", s.cfg.PollIntervalSeconds)
	if _, err := c.AddFunc(spec, func() { s.runCycle(ctx) }); err != nil {
		s.log.Errorf("scheduler: failed to register poll cycle: %v", err)
		return
	}
	s.cron = c
	c.Start()
}

// Stop halts the cron ticker, waits for the in-flight cycle to drain, and
// drops every live IMAP connection (spec §4.1 step 3). It does not cancel
// the context the pollers run under.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.running = false
	s.mu.Unlock()

	if c != nil {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}

	s.clientsMu.Lock()
	for id, client := range s.clients {
		client.Close()
		delete(s.clients, id)
	}
	s.clientsMu.Unlock()
}

// TriggerAccount runs one manual poll cycle for a single account (spec
// §4.1: "Manual trigger... reuses the same poller routine against a
// detached snapshot").
func (s *Scheduler) TriggerAccount(ctx context.Context, accountID uint) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account %d not found", accountID)
	}
	s.pollAccount(ctx, account)
	return nil
}

func (s *Scheduler) Status() interfaces.SchedulerStatus {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	out := interfaces.SchedulerStatus{Running: running, ActiveAccounts: len(s.statuses)}
	for _, st := range s.statuses {
		out.Accounts = append(out.Accounts, st)
	}
	return out
}

// runCycle implements spec §4.1 steps 1-2: snapshot enabled accounts,
// dispatch a poller per account, wait for all to finish, back off on error.
func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	backoff := s.backoffUntil
	s.mu.Unlock()
	if !backoff.IsZero() && time.Now().Before(backoff) {
		return
	}

	accounts, err := s.accounts.ListEnabled(ctx)
	if err != nil {
		s.log.Errorf("scheduler: list enabled accounts: %v", err)
		s.mu.Lock()
		s.backoffUntil = time.Now().Add(time.Duration(s.cfg.ErrorBackoffSeconds) * time.Second)
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.backoffUntil = time.Time{}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, account := range accounts {
		account := account
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pollAccount(ctx, account)
		}()
	}
	wg.Wait()
}

// pollAccount is the poller of spec §4.1: reuse a long-lived IMAP client,
// stream batches, canonicalize+upsert each batch, commit progress
// incrementally, and unconditionally touch last_check on exit.
func (s *Scheduler) pollAccount(ctx context.Context, account *models.Account) {
	status := enum.ConnectionStatusConnected
	errMsg := ""
	var totalProcessed int64

	defer func() {
		if err := s.accounts.TouchLastCheck(ctx, account.ID, models.AccountCheckResult{Status: status, ErrorMessage: errMsg}); err != nil {
			s.log.Warnf("account %d: touch last_check failed: %v", account.ID, err)
		}
		s.updateStatus(account, status, totalProcessed)
	}()

	client := s.getOrCreateClient(account)
	if err := client.EnsureConnected(); err != nil {
		status = enum.ConnectionStatusFailed
		errMsg = err.Error()
		s.log.Warnf("account %d: connect failed: %v", account.ID, err)
		return
	}

	folders, err := client.ListFolders()
	if err != nil {
		status = enum.ConnectionStatusFailed
		errMsg = err.Error()
		s.log.Warnf("account %d: list folders failed: %v", account.ID, err)
		return
	}

	view := policy.Resolve(s.extractCfg, account)

	for _, folder := range folders {
		if ctx.Err() != nil {
			return
		}

		err := client.FetchFolder(folder, s.cfg.MaxEmailsPerBatch, func(batch []imapclient.RawMessage) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var realised int64
			for _, raw := range batch {
				if _, err := s.pipeline.Ingest(ctx, account, view, raw); err != nil {
					s.log.Warnf("account %d: ingest uid=%d: %v", account.ID, raw.UID, err)
					continue
				}
				realised++
			}

			if realised > 0 {
				if err := s.accounts.IncrementProcessed(ctx, account.ID, realised); err != nil {
					return err
				}
				totalProcessed += realised
			}
			return nil
		})
		if err != nil {
			s.log.Warnf("account %d: folder %s: %v", account.ID, folder, err)
			continue
		}
	}
}

// clientKey identifies one long-lived IMAP client: one per (account id, host).
type clientKey struct {
	accountID uint
	host      string
}

func (s *Scheduler) getOrCreateClient(account *models.Account) *imapclient.Client {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	key := clientKey{accountID: account.ID, host: account.ImapHost}
	if c, ok := s.clients[key]; ok {
		return c
	}
	c := imapclient.New(s.log, account)
	s.clients[key] = c
	return c
}

func (s *Scheduler) updateStatus(account *models.Account, status enum.ConnectionStatus, delta int64) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.statuses[account.ID] = interfaces.AccountStatus{
		AccountID:            account.ID,
		Name:                 account.Name,
		ConnectionStatus:     status.String(),
		TotalEmailsProcessed: account.TotalEmailsProcessed + delta,
	}
}
