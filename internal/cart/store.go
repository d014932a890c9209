package cart

import (
	"context"
	"time"

	"github.com/asthar/asthar-backend/pkg/logger"
)

const defaultPersistTimeout = 2 * time.Second

// State is a point-in-time copy of a cart.
type State struct {
	Items  []LineItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

// Store owns one cart's line items and visibility flag. It is not safe for
// concurrent use; callers serialise access to a given store.
type Store struct {
	items   []LineItem
	open    bool
	storage Storage
	timeout time.Duration
	log     *logger.Logger
}

type Option func(*Store)

// WithPersistTimeout bounds each storage call.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a store hydrated from storage. A nil storage keeps the cart in memory only.
// Hydration never fails: missing or unreadable data yields an empty, closed cart.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		items:   []LineItem{},
		storage: storage,
		timeout: defaultPersistTimeout,
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	if s.storage == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn("Cart hydration failed, starting empty", logger.Fields{
			"error": err.Error(),
		})
		return
	}
	if data == nil {
		return
	}

	items, err := Decode(data)
	if err != nil {
		s.log.Warn("Persisted cart is corrupt, starting empty", logger.Fields{
			"error": err.Error(),
		})
		return
	}
	s.items = items
	s.log.Debug("Cart hydrated", logger.Fields{
		"line_items": len(items),
		"item_count": CountItems(items),
	})
}

// persist saves the current line items. Failures are logged and never roll
// back the in-memory change.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}

	data, err := Encode(s.items)
	if err != nil {
		s.log.Error("Failed to encode cart", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.storage.Save(ctx, data); err != nil {
		s.log.Warn("Failed to persist cart", logger.Fields{
			"error": err.Error(),
		})
	}
}

// AddItem merges quantity into the existing line for the product, capped at
// MaxQuantity, or appends a new line.
func (s *Store) AddItem(item Item, quantity int) {
	if i := indexOf(s.items, item.ProductID); i >= 0 {
		s.items[i].Quantity = clampQuantity(s.items[i].Quantity + quantity)
	} else {
		s.items = append(s.items, LineItem{Item: item, Quantity: clampQuantity(quantity)})
	}
	s.persist()
}

// RemoveItem drops the product's line; absent products are ignored.
func (s *Store) RemoveItem(productID string) {
	if i := indexOf(s.items, productID); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.persist()
}

// UpdateQuantity sets the product's quantity. Zero or less removes the line;
// a product not in the cart is left out.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	if i := indexOf(s.items, productID); i >= 0 {
		s.items[i].Quantity = clampQuantity(quantity)
	}
	s.persist()
}

func (s *Store) Clear() {
	s.items = []LineItem{}
	s.persist()
}

func (s *Store) Open() {
	s.open = true
}

func (s *Store) Close() {
	s.open = false
}

func (s *Store) Toggle() {
	s.open = !s.open
}

func (s *Store) IsOpen() bool {
	return s.open
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Snapshot() State {
	return State{Items: s.Items(), IsOpen: s.open}
}

func (s *Store) Totals() Totals {
	return ComputeTotals(s.items)
}

func (s *Store) ItemCount() int {
	return CountItems(s.items)
}

func (s *Store) ItemQuantity(productID string) int {
	return QuantityOf(s.items, productID)
}
