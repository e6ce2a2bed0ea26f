package problems

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Repository is the storage contract for problems.
//
// Implementations must:
// - assign ids from a counter that only grows (deleted ids are never handed out again)
// - return List in insertion order
// - return ErrNotFound from Get/Delete when the id is absent
type Repository interface {
	List(ctx context.Context) ([]Problem, error)
	Create(ctx context.Context, req CreateProblemRequest) (Problem, error)
	Get(ctx context.Context, id int) (Problem, error)
	Delete(ctx context.Context, id int) error
}

// Service validates input and delegates storage to a Repository.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

var errNoRepo = errors.New("problems: repository not configured")

func (s *Service) List(ctx context.Context) ([]Problem, error) {
	if s.repo == nil {
		return nil, errNoRepo
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("problems: list: %w", err)
	}
	if out == nil {
		out = []Problem{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req CreateProblemRequest) (Problem, error) {
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return Problem{}, err
	}
	if s.repo == nil {
		return Problem{}, errNoRepo
	}
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return Problem{}, fmt.Errorf("problems: create: %w", err)
	}
	s.log.InfoContext(ctx, "problem created", "problem_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int) (Problem, error) {
	if s.repo == nil {
		return Problem{}, errNoRepo
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Problem{}, ErrNotFound
		}
		return Problem{}, fmt.Errorf("problems: get %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if s.repo == nil {
		return errNoRepo
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("problems: delete %d: %w", id, err)
	}
	s.log.InfoContext(ctx, "problem deleted", "problem_id", id)
	return nil
}
