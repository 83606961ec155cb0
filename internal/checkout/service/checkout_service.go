package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/product/domain"
)

// CheckoutService completes a purchase of one unit of a product.
type CheckoutService interface {
	Purchase(ctx context.Context, p domain.Product) error
}

type stubCheckoutService struct {
	delay time.Duration
}

// NewStubCheckoutService waits for delay and reports success. It charges
// nothing and does not touch stock; the commerce API stays the source of
// truth for amount.
func NewStubCheckoutService(delay time.Duration) CheckoutService {
	return &stubCheckoutService{delay: delay}
}

func (s *stubCheckoutService) Purchase(ctx context.Context, p domain.Product) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		logger.Info("Checkout stub: purchase completed", "product", p.ID)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("purchase of product %s interrupted: %w", p.ID, ctx.Err())
	}
}
