package usecase

import (
	"context"
	"errors"

	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/repository"
)

var (
	ErrNoRuns = errors.New("no diagnosis runs recorded")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// RunHistory defines the read side over past diagnoses.
type RunHistory interface {
	Latest(ctx context.Context) (*entity.Run, error)
	List(ctx context.Context, limit int) ([]*entity.Run, error)
}

type runHistoryUseCase struct {
	runRepo     repository.RunRepository
	historyRepo repository.HistoryRepository
}

// NewRunHistory creates a new RunHistory use case.
func NewRunHistory(runRepo repository.RunRepository, historyRepo repository.HistoryRepository) RunHistory {
	return &runHistoryUseCase{runRepo: runRepo, historyRepo: historyRepo}
}

func (uc *runHistoryUseCase) Latest(ctx context.Context) (*entity.Run, error) {
	run, err := uc.historyRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrNoRuns
	}
	return run, nil
}

// List returns up to limit runs, newest first. limit is clamped to [1, 100];
// zero or negative selects the default of 20.
func (uc *runHistoryUseCase) List(ctx context.Context, limit int) ([]*entity.Run, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return uc.runRepo.List(ctx, limit)
}
