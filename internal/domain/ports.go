package domain

import "context"

// Catalog is a read-only snapshot of the nutrition tables, built once at
// process start. Lookups are exact (case-insensitive) within a basis.
type Catalog interface {
	Lookup(name string, basis Basis) (CatalogEntry, bool)
	Search(query string, basis Basis) []CatalogEntry
	All(basis Basis) []CatalogEntry
}

type LogRepository interface {
	Append(ctx context.Context, entry LogEntry) (LogEntry, error)
	QueryByDate(ctx context.Context, date string) ([]LogEntry, error)
	QueryByDateRange(ctx context.Context, start, end string) ([]LogEntry, error)
	QueryByDates(ctx context.Context, dates []string) ([]LogEntry, error)
	DeleteByDate(ctx context.Context, date string) error
	DeleteByID(ctx context.Context, id uint) error
}

type OverrideRepository interface {
	Save(ctx context.Context, value Override) (Override, error)
	Get(ctx context.Context, dishName string) (Override, bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, value Session) (Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}
