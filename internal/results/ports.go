package results

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=results

// Repository defines the contract for dataset storage.
type Repository interface {
	// SaveDataset writes ds and its records and supersedes the previous
	// current dataset of the same year in one transaction. It assigns
	// ds.ID, ds.Version and ds.CreatedAt.
	SaveDataset(ctx context.Context, ds *Dataset, records []Record) error
	CurrentDatasets(ctx context.Context) ([]Dataset, error)
	CurrentDataset(ctx context.Context, year int) (Dataset, error)
	DatasetHistory(ctx context.Context, year int) ([]Dataset, error)
	List(ctx context.Context, q Query) ([]Record, int, error)
	All(ctx context.Context, q Query) ([]Record, error)
}
