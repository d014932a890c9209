package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/cart"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCartEmpty = errors.New("cart is empty")

// UserCartSession is the cart session id owned by an authenticated user
func UserCartSession(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

// CartView is the cart as returned to clients
type CartView struct {
	Items  []cart.LineItem `json:"items"`
	IsOpen bool            `json:"isOpen"`
	Totals cart.Totals     `json:"totals"`
}

func viewOf(store *cart.Store) CartView {
	snapshot := store.Snapshot()
	return CartView{
		Items:  snapshot.Items,
		IsOpen: snapshot.IsOpen,
		Totals: cart.ComputeTotals(snapshot.Items),
	}
}

// StorageFactory returns the persistence backend for one cart session
type StorageFactory func(session string) cart.Storage

// NewStorageFactory selects cart persistence from config. Memory storages are
// kept per session so an evicted cart can be rehydrated, and are forgotten
// once unused for the session TTL.
func NewStorageFactory(cfg config.CartConfig, client cart.RedisCmdable) StorageFactory {
	switch cfg.StorageDriver {
	case config.CartStorageRedis:
		if client != nil {
			return func(session string) cart.Storage {
				return cart.NewRedisStorage(client, fmt.Sprintf("%s:%s", cfg.StorageKey, session), cfg.SessionTTL)
			}
		}
		logger.Warn("Redis unavailable for cart storage, keeping carts in memory")
	case config.CartStorageFile:
		return func(session string) cart.Storage {
			return cart.NewFileStorage(cfg.StorageDir, fmt.Sprintf("%s-%s", cfg.StorageKey, session))
		}
	}

	return newMemoryStorages(cfg.SessionTTL).get
}

const memorySweepInterval = time.Minute

type memoryStorages struct {
	mu        sync.Mutex
	entries   map[string]*sessionMemory
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newMemoryStorages(ttl time.Duration) *memoryStorages {
	return &memoryStorages{
		entries: make(map[string]*sessionMemory),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *memoryStorages) get(session string) cart.Storage {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ttl > 0 && now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweep(now)
	}

	entry, ok := m.entries[session]
	if !ok {
		entry = &sessionMemory{MemoryStorage: cart.NewMemoryStorage(), registry: m}
		m.entries[session] = entry
	}
	entry.lastUsed = now
	return entry
}

// sweep drops storages untouched since now-ttl. Callers hold m.mu.
func (m *memoryStorages) sweep(now time.Time) int {
	cutoff := now.Add(-m.ttl)
	dropped := 0
	for id, entry := range m.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(m.entries, id)
			dropped++
		}
	}
	m.lastSweep = now

	if dropped > 0 {
		logger.Debug("Dropped expired in-memory carts", map[string]interface{}{
			"dropped":   dropped,
			"remaining": len(m.entries),
		})
	}
	return dropped
}

func (m *memoryStorages) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sessionMemory records when its session last read or wrote the cart
type sessionMemory struct {
	*cart.MemoryStorage
	registry *memoryStorages
	lastUsed time.Time
}

func (s *sessionMemory) touch() {
	s.registry.mu.Lock()
	s.lastUsed = s.registry.now()
	s.registry.mu.Unlock()
}

func (s *sessionMemory) Load(ctx context.Context) ([]byte, error) {
	s.touch()
	return s.MemoryStorage.Load(ctx)
}

func (s *sessionMemory) Save(ctx context.Context, data []byte) error {
	s.touch()
	return s.MemoryStorage.Save(ctx, data)
}

type CartService interface {
	GetCart(session string) CartView
	AddItem(session string, productID uuid.UUID, quantity int) (CartView, error)
	UpdateQuantity(session, productID string, quantity int) CartView
	RemoveItem(session, productID string) CartView
	ClearCart(session string) CartView
	OpenCart(session string) CartView
	CloseCart(session string) CartView
	ToggleCart(session string) CartView
	Checkout(session string, place func(items []cart.LineItem, totals cart.Totals) error) error
	EvictIdle() int
	ActiveSessions() int
}

type cartSession struct {
	mu       sync.Mutex
	store    *cart.Store
	lastSeen time.Time
}

type cartService struct {
	mu             sync.Mutex
	sessions       map[string]*cartSession
	storage        StorageFactory
	productRepo    repository.ProductRepository
	persistTimeout time.Duration
	idleTimeout    time.Duration
	now            func() time.Time
}

func NewCartService(
	productRepo repository.ProductRepository,
	storage StorageFactory,
	persistTimeout, idleTimeout time.Duration,
) CartService {
	return &cartService{
		sessions:       make(map[string]*cartSession),
		storage:        storage,
		productRepo:    productRepo,
		persistTimeout: persistTimeout,
		idleTimeout:    idleTimeout,
		now:            time.Now,
	}
}

func (s *cartService) session(id string) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &cartSession{}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess
}

// withStore runs fn with exclusive access to the session's store, hydrating it on first use
func (s *cartService) withStore(id string, fn func(store *cart.Store) error) (CartView, error) {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.store == nil {
		var storage cart.Storage
		if s.storage != nil {
			storage = s.storage(id)
		}
		sess.store = cart.New(storage, cart.WithPersistTimeout(s.persistTimeout))
	}

	if err := fn(sess.store); err != nil {
		return CartView{}, err
	}
	return viewOf(sess.store), nil
}

func (s *cartService) mutate(id string, fn func(store *cart.Store)) CartView {
	view, _ := s.withStore(id, func(store *cart.Store) error {
		fn(store)
		return nil
	})
	return view
}

func (s *cartService) GetCart(session string) CartView {
	return s.mutate(session, func(*cart.Store) {})
}

// AddItem snapshots the product from the catalog and merges it into the cart
func (s *cartService) AddItem(session string, productID uuid.UUID, quantity int) (CartView, error) {
	logger.Debug("Adding item to cart", map[string]interface{}{
		"session":    session,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"session":    session,
				"product_id": productID,
			})
			return CartView{}, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return CartView{}, err
	}

	if !product.InStock() {
		logger.Warn("Cannot add to cart: product out of stock", map[string]interface{}{
			"session":    session,
			"product_id": productID,
		})
		return CartView{}, ErrProductOutOfStock
	}

	if quantity == 0 {
		quantity = cart.DefaultQuantity
	}

	item := cart.Item{
		ProductID:     product.ID.String(),
		Title:         product.Title,
		Slug:          product.Slug,
		Price:         product.Price,
		DiscountPrice: product.DiscountPrice,
		Thumbnail:     product.Thumbnail,
	}

	view := s.mutate(session, func(store *cart.Store) {
		store.AddItem(item, quantity)
	})

	logger.Info("Item added to cart", map[string]interface{}{
		"session":    session,
		"product_id": productID,
		"item_count": view.Totals.ItemCount,
	})
	return view, nil
}

func (s *cartService) UpdateQuantity(session, productID string, quantity int) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.UpdateQuantity(productID, quantity)
	})
}

func (s *cartService) RemoveItem(session, productID string) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.RemoveItem(productID)
	})
}

func (s *cartService) ClearCart(session string) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.Clear()
	})
}

func (s *cartService) OpenCart(session string) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.Open()
	})
}

func (s *cartService) CloseCart(session string) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.Close()
	})
}

func (s *cartService) ToggleCart(session string) CartView {
	return s.mutate(session, func(store *cart.Store) {
		store.Toggle()
	})
}

// Checkout hands the cart contents to place while holding the session, and
// clears the cart only when place succeeds
func (s *cartService) Checkout(session string, place func(items []cart.LineItem, totals cart.Totals) error) error {
	_, err := s.withStore(session, func(store *cart.Store) error {
		items := store.Items()
		if len(items) == 0 {
			return ErrCartEmpty
		}
		if err := place(items, cart.ComputeTotals(items)); err != nil {
			return err
		}
		store.Clear()
		return nil
	})
	return err
}

// EvictIdle drops sessions unused for longer than the idle timeout. Their line
// items stay in storage and are rehydrated on the next request.
func (s *cartService) EvictIdle() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTimeout)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		sess.mu.Unlock()
		evicted++
	}

	if evicted > 0 {
		logger.Info("Evicted idle cart sessions", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(s.sessions),
		})
	}
	return evicted
}

func (s *cartService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
