package problems

import (
	"context"
	"sync"
)

// MemoryRepo keeps problems in process memory. Data is lost when the process exits.
//
// A single mutex guards the ordered id list, the index and the counter, so
// concurrent handlers never observe a half-applied create or delete.
type MemoryRepo struct {
	mu     sync.Mutex
	order  []int
	byID   map[int]Problem
	nextID int
}

// NewMemoryRepo returns a repo holding the seed problems with the counter at 4.
func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{byID: map[int]Problem{}, nextID: firstFreeID}
	for _, p := range SeedProblems() {
		r.order = append(r.order, p.ID)
		r.byID[p.ID] = p
	}
	return r
}

func (r *MemoryRepo) List(ctx context.Context) ([]Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Problem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *MemoryRepo) Create(ctx context.Context, req CreateProblemRequest) (Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := Problem{
		ID:         r.nextID,
		Name:       req.Name,
		URL:        req.URL,
		Difficulty: req.Difficulty,
		Status:     req.Status,
	}
	r.order = append(r.order, p.ID)
	r.byID[p.ID] = p
	r.nextID++
	return p, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int) (Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Problem{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// NextID returns the id the next Create will assign.
func (r *MemoryRepo) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID
}
