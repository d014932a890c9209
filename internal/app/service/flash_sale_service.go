package service

import (
	"context"
	"time"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
)

const DefaultFlashSaleLimit = 8

// Remaining splits the time left in a sale window; Total is in milliseconds
type Remaining struct {
	Total   int64 `json:"total"`
	Days    int   `json:"days"`
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
}

type FlashSaleWindow struct {
	EndsAt    time.Time `json:"endsAt"`
	Remaining Remaining `json:"remaining"`
}

type FlashSale struct {
	Products []model.Product `json:"products"`
	FlashSaleWindow
}

// SaleEnd is the last millisecond of now's calendar day in loc
func SaleEnd(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// TimeRemaining breaks the duration until end into parts, zero once end has passed
func TimeRemaining(end, now time.Time) Remaining {
	left := end.Sub(now)
	if left <= 0 {
		return Remaining{}
	}
	return Remaining{
		Total:   left.Milliseconds(),
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left/time.Hour) % 24,
		Minutes: int(left/time.Minute) % 60,
		Seconds: int(left/time.Second) % 60,
	}
}

type FlashSaleService interface {
	Window() FlashSaleWindow
	GetFlashSale(ctx context.Context) (*FlashSale, error)
	Rollover(ctx context.Context) error
}

type flashSaleService struct {
	products   ProductService
	categories CategoryService
	location   *time.Location
	limit      int
	now        func() time.Time
}

func NewFlashSaleService(products ProductService, categories CategoryService, loc *time.Location, limit int) FlashSaleService {
	if loc == nil {
		loc = time.UTC
	}
	if limit <= 0 {
		limit = DefaultFlashSaleLimit
	}
	return &flashSaleService{
		products:   products,
		categories: categories,
		location:   loc,
		limit:      limit,
		now:        time.Now,
	}
}

func (s *flashSaleService) Window() FlashSaleWindow {
	now := s.now()
	end := SaleEnd(now, s.location)
	return FlashSaleWindow{
		EndsAt:    end,
		Remaining: TimeRemaining(end, now),
	}
}

func (s *flashSaleService) GetFlashSale(ctx context.Context) (*FlashSale, error) {
	products, err := s.products.GetFlashSaleProducts(ctx, s.limit)
	if err != nil {
		logger.Error("Failed to fetch flash sale products", err)
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}

	return &FlashSale{
		Products:        products,
		FlashSaleWindow: s.Window(),
	}, nil
}

// Rollover starts a new sale day by dropping the cached catalog documents
func (s *flashSaleService) Rollover(ctx context.Context) error {
	logger.Info("Rolling over flash sale", map[string]interface{}{
		"timezone": s.location.String(),
	})

	if err := s.products.InvalidateProducts(ctx); err != nil {
		logger.Error("Failed to invalidate product cache", err)
		return err
	}
	if err := s.categories.InvalidateCategories(ctx); err != nil {
		logger.Error("Failed to invalidate category cache", err)
		return err
	}
	return nil
}
