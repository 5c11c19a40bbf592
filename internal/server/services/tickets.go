package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
)

type TicketService struct {
	base
}

func NewTicketService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *TicketService {
	return &TicketService{base: newBase(pool, rm, cfg, logger, "tickets")}
}

// Open files a help ticket on behalf of pr.
func (s *TicketService) Open(ctx context.Context, pr *access.Principal, description string) (int64, error) {
	if err := requirePrincipal(pr); err != nil {
		return 0, err
	}
	var id int64
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Tickets(tx)
		next, err := repo.NextTicketID(ctx)
		if err != nil {
			return false, err
		}
		uid := pr.UserID
		ok, err := repo.InsertTicket(ctx, &models.HelpTicket{ID: next, Description: description, Requestor: &uid})
		if err != nil || !ok {
			return false, fmt.Errorf("help ticket %d: %w", next, firstErr(err, common.ErrAlreadyExists))
		}
		id = next
		return true, nil
	})
	return id, err
}

// Get returns ticket hid to its requestor or to staff.
func (s *TicketService) Get(ctx context.Context, pr *access.Principal, hid int64) (*models.HelpTicket, error) {
	if err := requirePrincipal(pr); err != nil {
		return nil, err
	}
	var t *models.HelpTicket
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		var err error
		if t, err = s.rm.Tickets(tx).LoadTicket(ctx, hid); err != nil {
			return false, err
		}
		if !pr.IsStaffOrAdmin() && !isUser(t.Requestor, pr.UserID) {
			return false, s.deny(ctx, pr, "help_ticket", hid)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve marks a ticket resolved. Staff and admins only.
func (s *TicketService) Resolve(ctx context.Context, pr *access.Principal, hid int64) error {
	if err := requirePrincipal(pr); err != nil {
		return err
	}
	if !pr.IsStaffOrAdmin() {
		return s.deny(ctx, pr, "help_ticket", hid)
	}
	return s.setStatus(ctx, hid, models.HelpResolved)
}

// Close closes a ticket. The requestor may close their own ticket.
func (s *TicketService) Close(ctx context.Context, pr *access.Principal, hid int64) error {
	if err := requirePrincipal(pr); err != nil {
		return err
	}
	if !pr.IsStaffOrAdmin() {
		if _, err := s.Get(ctx, pr, hid); err != nil {
			return err
		}
	}
	return s.setStatus(ctx, hid, models.HelpClosed)
}

func (s *TicketService) setStatus(ctx context.Context, hid int64, status models.HelpStatus) error {
	return s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		ok, err := s.rm.Tickets(tx).AlterTicket(ctx, hid, entities.Attrs{"h_status": string(status)})
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("help ticket %d: %w", hid, common.ErrorNotFound)
		}
		return true, nil
	})
}

// Pending lists open tickets for staff.
func (s *TicketService) Pending(ctx context.Context, pr *access.Principal) ([]int64, error) {
	if err := requirePrincipal(pr); err != nil {
		return nil, err
	}
	if !pr.IsStaffOrAdmin() {
		return nil, s.deny(ctx, pr, "help_ticket", "pending")
	}
	var ids []int64
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		var err error
		ids, err = s.rm.Tickets(tx).FindTicketsByStatus(ctx, models.HelpOpen)
		return err == nil, err
	})
	return ids, err
}

func isUser(id *int64, uid int64) bool {
	return id != nil && *id == uid
}
