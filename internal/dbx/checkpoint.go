package dbx

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/common"
)

// PushCheckpoint creates a savepoint named after a per-transaction counter
// and pushes it on the checkpoint stack.
func (t *Tx) PushCheckpoint(ctx context.Context) error {
	if err := t.checkActive("push checkpoint"); err != nil {
		return err
	}
	t.seq++
	name := fmt.Sprintf("sp_%d", t.seq)
	if _, err := t.tx.ExecContext(detach(ctx), "SAVEPOINT "+name); err != nil {
		return common.NewStorageError("savepoint", err)
	}
	t.checkpoints = append(t.checkpoints, name)
	return nil
}

// PopCheckpoint releases the top savepoint. Changes made since the matching
// push stay in the enclosing scope.
func (t *Tx) PopCheckpoint(ctx context.Context) error {
	name, err := t.topCheckpoint("pop checkpoint")
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(detach(ctx), "RELEASE SAVEPOINT "+name); err != nil {
		return common.NewStorageError("release savepoint", err)
	}
	t.checkpoints = t.checkpoints[:len(t.checkpoints)-1]
	return nil
}

// RestoreCheckpoint undoes everything since the top savepoint. The savepoint
// stays on the stack, so calling it again returns to the same point.
func (t *Tx) RestoreCheckpoint(ctx context.Context) error {
	name, err := t.topCheckpoint("restore checkpoint")
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(detach(ctx), "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return common.NewStorageError("rollback to savepoint", err)
	}
	return nil
}

// Depth is the number of open checkpoints.
func (t *Tx) Depth() int { return len(t.checkpoints) }

// Nested runs fn between a push and a pop. When fn fails the checkpoint is
// restored before popping, so none of fn's writes survive.
func (t *Tx) Nested(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := t.PushCheckpoint(ctx); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if rErr := t.RestoreCheckpoint(ctx); rErr != nil {
			return fmt.Errorf("%w (restore: %v)", err, rErr)
		}
		if pErr := t.PopCheckpoint(ctx); pErr != nil {
			return fmt.Errorf("%w (pop: %v)", err, pErr)
		}
		return err
	}
	return t.PopCheckpoint(ctx)
}

func (t *Tx) topCheckpoint(op string) (string, error) {
	if err := t.checkActive(op); err != nil {
		return "", err
	}
	if len(t.checkpoints) == 0 {
		return "", fmt.Errorf("%s with empty stack: %w", op, common.ErrCheckpointMisuse)
	}
	return t.checkpoints[len(t.checkpoints)-1], nil
}
