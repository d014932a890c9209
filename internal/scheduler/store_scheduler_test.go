package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/app/service"
	"github.com/asthar/asthar-backend/internal/websocket"
	"github.com/asthar/asthar-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlashSale struct {
	rollovers int
	err       error
	window    service.FlashSaleWindow
}

func (s *stubFlashSale) Window() service.FlashSaleWindow { return s.window }

func (s *stubFlashSale) GetFlashSale(ctx context.Context) (*service.FlashSale, error) {
	return &service.FlashSale{FlashSaleWindow: s.window}, nil
}

func (s *stubFlashSale) Rollover(ctx context.Context) error {
	s.rollovers++
	return s.err
}

type recordingHub struct {
	mu       sync.Mutex
	messages []websocket.Message
}

func (h *recordingHub) Broadcast(msgType string, data interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, websocket.Message{Type: msgType, Data: data})
	return nil
}

func newCartService() service.CartService {
	storage := service.NewStorageFactory(config.CartConfig{StorageDriver: config.CartStorageMemory}, nil)
	return service.NewCartService(nil, storage, time.Second, time.Nanosecond)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "job", job) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, label := range m.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestStoreScheduler_RunFlashSaleRollover(t *testing.T) {
	reg := prometheus.NewRegistry()
	end := time.Date(2026, 3, 15, 23, 59, 59, 999_000_000, time.UTC)
	flashSale := &stubFlashSale{window: service.FlashSaleWindow{EndsAt: end}}
	hub := &recordingHub{}

	s := NewStoreScheduler(Config{FlashSaleSchedule: "0 0 * * *"}, flashSale, newCartService(), hub, metrics.NewCronJobMetrics(reg))

	require.NoError(t, s.RunFlashSaleRollover())

	assert.Equal(t, 1, flashSale.rollovers)
	require.Len(t, hub.messages, 1)
	assert.Equal(t, websocket.MessageRollover, hub.messages[0].Type)
	assert.Equal(t, service.FlashSaleWindow{EndsAt: end}, hub.messages[0].Data)
	assert.Equal(t, float64(1), counterValue(t, reg, "asthar_job_success_total", JobFlashSaleRollover))
}

func TestStoreScheduler_RunFlashSaleRollover_Failure(t *testing.T) {
	reg := prometheus.NewRegistry()
	flashSale := &stubFlashSale{err: errors.New("redis down")}
	hub := &recordingHub{}

	s := NewStoreScheduler(Config{}, flashSale, newCartService(), hub, metrics.NewCronJobMetrics(reg))

	assert.Error(t, s.RunFlashSaleRollover())
	assert.Empty(t, hub.messages)
	assert.Equal(t, float64(1), counterValue(t, reg, "asthar_job_failure_total", JobFlashSaleRollover))
}

func TestStoreScheduler_RunCartEviction(t *testing.T) {
	reg := prometheus.NewRegistry()
	carts := newCartService()
	carts.GetCart("guest-1")
	carts.GetCart("guest-2")
	require.Equal(t, 2, carts.ActiveSessions())

	s := NewStoreScheduler(Config{}, &stubFlashSale{}, carts, nil, metrics.NewCronJobMetrics(reg))

	time.Sleep(time.Millisecond)
	require.NoError(t, s.RunCartEviction())
	assert.Equal(t, 0, carts.ActiveSessions())
	assert.Equal(t, float64(1), counterValue(t, reg, "asthar_job_success_total", JobCartEviction))
}

func TestStoreScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewStoreScheduler(Config{FlashSaleSchedule: "not a schedule"}, &stubFlashSale{}, newCartService(), nil, nil)
	assert.Error(t, s.Start())
}

func TestStoreScheduler_StartStop(t *testing.T) {
	s := NewStoreScheduler(Config{
		FlashSaleSchedule: "0 0 * * *",
		EvictSchedule:     "@every 5m",
		Location:          time.UTC,
	}, &stubFlashSale{}, newCartService(), nil, nil)

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
