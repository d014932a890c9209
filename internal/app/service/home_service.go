package service

import (
	"context"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/pkg/logger"
)

const HomeProductLimit = 12

type LatestProducts struct {
	Products []model.Product `json:"products"`
	HasMore  bool            `json:"hasMore"`
}

type HomePage struct {
	Categories []model.CategoryWithCount `json:"categories"`
	FlashSale  *FlashSale                `json:"flashSale"`
	Latest     LatestProducts            `json:"latest"`
}

type HomeService interface {
	GetHome(ctx context.Context) (*HomePage, error)
}

type homeService struct {
	products   ProductService
	categories CategoryService
	flashSale  FlashSaleService
}

func NewHomeService(products ProductService, categories CategoryService, flashSale FlashSaleService) HomeService {
	return &homeService{
		products:   products,
		categories: categories,
		flashSale:  flashSale,
	}
}

func (s *homeService) GetHome(ctx context.Context) (*HomePage, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	sale, err := s.flashSale.GetFlashSale(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := s.products.GetNewestProducts(HomeProductLimit)
	if err != nil {
		logger.Error("Failed to fetch newest products", err)
		return nil, err
	}

	return &HomePage{
		Categories: categories,
		FlashSale:  sale,
		Latest: LatestProducts{
			Products: latest,
			HasMore:  len(latest) == HomeProductLimit,
		},
	}, nil
}
