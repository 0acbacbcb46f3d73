package port

import "context"

// StockReserver wraps the two atomic stock procedures the data store exposes.
// Each call is atomic at single-product granularity only; callers must never
// batch products into one reservation.
type StockReserver interface {
	// ReserveStock atomically decrements the product's stock by quantity if
	// enough is available. Returns *domain.StockError when the product is
	// missing or short; any other error is a transport failure.
	ReserveStock(ctx context.Context, productID string, quantity int) error

	// ReleaseStock atomically restores previously reserved stock.
	// Compensation only; it must be called exactly once per successful
	// ReserveStock.
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}

// StockLevels reads current stock, used by the post-commit low-stock sweep.
type StockLevels interface {
	StockLevel(ctx context.Context, productID string) (int, error)
}
