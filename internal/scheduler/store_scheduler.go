package scheduler

import (
	"context"
	"time"

	"github.com/asthar/asthar-backend/internal/app/service"
	"github.com/asthar/asthar-backend/internal/websocket"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/asthar/asthar-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const (
	JobFlashSaleRollover = "flash_sale_rollover"
	JobCartEviction      = "cart_eviction"

	rolloverTimeout = 30 * time.Second
)

// Broadcaster pushes a message to every live subscriber
type Broadcaster interface {
	Broadcast(msgType string, data interface{}) error
}

type Config struct {
	FlashSaleSchedule string
	EvictSchedule     string
	Location          *time.Location
}

// StoreScheduler runs the storefront's periodic jobs: the daily flash sale
// rollover and idle cart eviction
type StoreScheduler struct {
	cron      *cron.Cron
	cfg       Config
	flashSale service.FlashSaleService
	carts     service.CartService
	hub       Broadcaster
	metrics   *metrics.CronJobMetrics
}

func NewStoreScheduler(
	cfg Config,
	flashSale service.FlashSaleService,
	carts service.CartService,
	hub Broadcaster,
	jobMetrics *metrics.CronJobMetrics,
) *StoreScheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &StoreScheduler{
		cron:      cron.New(cron.WithLocation(cfg.Location)),
		cfg:       cfg,
		flashSale: flashSale,
		carts:     carts,
		hub:       hub,
		metrics:   jobMetrics,
	}
}

// Start registers the jobs and starts the cron runner
func (s *StoreScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.FlashSaleSchedule, func() {
		_ = s.RunFlashSaleRollover()
	}); err != nil {
		logger.Error("Failed to add cron job for flash sale rollover", err, map[string]interface{}{
			"schedule": s.cfg.FlashSaleSchedule,
		})
		return err
	}

	if s.cfg.EvictSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.EvictSchedule, func() {
			_ = s.RunCartEviction()
		}); err != nil {
			logger.Error("Failed to add cron job for cart eviction", err, map[string]interface{}{
				"schedule": s.cfg.EvictSchedule,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Store scheduler started", map[string]interface{}{
		"flash_sale_schedule": s.cfg.FlashSaleSchedule,
		"evict_schedule":      s.cfg.EvictSchedule,
		"timezone":            s.cfg.Location.String(),
	})
	return nil
}

// Stop halts the runner and waits for running jobs to finish
func (s *StoreScheduler) Stop(ctx context.Context) {
	logger.Info("Stopping store scheduler...")
	select {
	case <-s.cron.Stop().Done():
		logger.Info("Store scheduler stopped")
	case <-ctx.Done():
		logger.Warn("Store scheduler stop timed out")
	}
}

// RunFlashSaleRollover drops cached sale documents and tells subscribers the
// new sale window
func (s *StoreScheduler) RunFlashSaleRollover() error {
	return s.metrics.Track(JobFlashSaleRollover, func() error {
		logger.Info("Starting scheduled flash sale rollover")

		ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
		defer cancel()

		if err := s.flashSale.Rollover(ctx); err != nil {
			logger.Error("Failed to roll over flash sale", err)
			return err
		}

		if s.hub != nil {
			if err := s.hub.Broadcast(websocket.MessageRollover, s.flashSale.Window()); err != nil {
				logger.Error("Failed to broadcast flash sale rollover", err)
				return err
			}
		}

		logger.Info("Flash sale rolled over")
		return nil
	})
}

func (s *StoreScheduler) RunCartEviction() error {
	return s.metrics.Track(JobCartEviction, func() error {
		evicted := s.carts.EvictIdle()
		logger.Debug("Cart eviction finished", map[string]interface{}{
			"evicted": evicted,
			"active":  s.carts.ActiveSessions(),
		})
		return nil
	})
}
