package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// Storage is the durable collaborator the store persists its line items to.
// Load returns nil data and a nil error when nothing has been saved yet.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// persisted mirrors the envelope written by the web client's persisted store,
// so carts saved by either side hydrate in the other.
type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Items []LineItem `json:"items"`
}

// Encode serialises the line-item collection. The visibility flag is never part of it.
func Encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(persisted{State: persistedState{Items: items}})
}

// Decode parses a persisted collection and restores the cart invariants:
// one line per product, quantities within bounds, insertion order kept.
func Decode(data []byte) ([]LineItem, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(p.State.Items))
	for _, item := range p.State.Items {
		if item.ProductID == "" || item.Quantity < MinQuantity {
			continue
		}
		if i := indexOf(items, item.ProductID); i >= 0 {
			items[i].Quantity = clampQuantity(items[i].Quantity + item.Quantity)
			continue
		}
		item.Quantity = clampQuantity(item.Quantity)
		items = append(items, item)
	}
	return items, nil
}

// MemoryStorage keeps the serialised cart in process memory.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}
