package unitofwork

import "context"

// RepositoryFactory creates transactional units of work. Stores hold a
// factory rather than a *gorm.DB so tests can substitute in-memory fakes.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
