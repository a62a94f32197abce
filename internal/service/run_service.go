package service

import (
	"context"

	"github.com/alexanderramin/climbdiet/internal/db"
	"github.com/alexanderramin/climbdiet/internal/domain"
	"github.com/alexanderramin/climbdiet/internal/repository"
)

type runService struct {
	runs repository.RunRepo
	uow  db.UnitOfWork
}

func NewRunService(runs repository.RunRepo, uow db.UnitOfWork) RunService {
	return &runService{runs: runs, uow: uow}
}

func (s *runService) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	return s.runs.List(ctx, limit)
}

func (s *runService) Get(ctx context.Context, idPrefix string) (*domain.Run, error) {
	return s.runs.GetByPrefix(ctx, idPrefix)
}

// Delete resolves the prefix and removes the run in one transaction.
func (s *runService) Delete(ctx context.Context, idPrefix string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRuns := repository.NewSQLiteRunRepo(tx)
		run, err := txRuns.GetByPrefix(ctx, idPrefix)
		if err != nil {
			return err
		}
		return txRuns.Delete(ctx, run.ID)
	})
}
