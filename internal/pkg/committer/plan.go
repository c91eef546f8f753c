// Package committer implements the Golden Mutation Pattern for Spanner transactions.
//
// Domain aggregates change state in memory, repositories translate those
// changes into Spanner mutations without applying them, and usecases collect
// the mutations into a CommitPlan that is applied atomically at the end:
//
//	req, err := repo.GetByID(ctx, requestID)
//	if err := req.Approve(actor, notes, policy, now); err != nil {
//	    return err
//	}
//
//	plan := committer.NewPlan()
//	plan.AddGuard(repo.DecisionStmt(req), domain.ErrAlreadyDecided)
//	for _, event := range req.DomainEvents() {
//	    plan.Add(outboxRepo.InsertMut(outboxRepo.EnrichEvent(event, payload)))
//	}
//	return committer.Apply(ctx, plan)
//
// A guard is a DML statement that must affect at least one row. Plans with
// guards run inside a read-write transaction: each guard executes first and a
// zero row count aborts the whole transaction with the guard's error, so
// mutations buffered in the same plan are never applied on their own.
package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// Guard is a conditional DML statement that must touch at least one row.
type Guard struct {
	Stmt   spanner.Statement
	OnMiss error
}

// CommitPlan is a typed wrapper around Spanner mutations for the Golden Mutation Pattern.
// It collects guards and mutations from multiple sources and applies them atomically.
type CommitPlan struct {
	guards    []Guard
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		guards:    make([]Guard, 0),
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddGuard adds a conditional statement. onMiss is returned from Apply when
// the statement affects no rows.
func (cp *CommitPlan) AddGuard(stmt spanner.Statement, onMiss error) {
	cp.guards = append(cp.guards, Guard{Stmt: stmt, OnMiss: onMiss})
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// Guards returns all collected guards in insertion order.
func (cp *CommitPlan) Guards() []Guard {
	return cp.guards
}

// IsEmpty returns true if the plan has neither guards nor mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0 && len(cp.guards) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Applier applies commit plans. Usecases depend on this instead of *Committer.
type Applier interface {
	Apply(ctx context.Context, plan *CommitPlan) error
}

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply executes the CommitPlan atomically.
// Plans without guards use a blind-write Apply; plans with guards use a
// read-write transaction so the guard check and the writes commit together.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil // Nothing to commit
	}

	if len(plan.guards) == 0 {
		if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
			return fmt.Errorf("failed to apply commit plan: %w", err)
		}
		return nil
	}

	var missed error
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		missed = nil // the callback may be retried after an abort
		for _, guard := range plan.guards {
			rowCount, err := txn.Update(ctx, guard.Stmt)
			if err != nil {
				return fmt.Errorf("failed to execute guard: %w", err)
			}
			if rowCount == 0 {
				missed = guard.OnMiss
				return missed
			}
		}
		if len(plan.mutations) == 0 {
			return nil
		}
		return txn.BufferWrite(plan.Mutations())
	})
	if missed != nil {
		return missed
	}
	if err != nil {
		return fmt.Errorf("failed to apply guarded commit plan: %w", err)
	}

	return nil
}
