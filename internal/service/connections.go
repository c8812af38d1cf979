package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// ConnectionService governs the directed request lifecycle between two
// users: pending -> accepted | rejected. At most one active record exists
// per unordered pair; the storage layer's unique pair index is what makes
// that hold under concurrent requests.
type ConnectionService struct {
	conns    repository.ConnectionRepository
	users    repository.UserRepository
	notifier *Notifier
	events   EventPublisher
	log      *zap.SugaredLogger
}

func NewConnectionService(conns repository.ConnectionRepository, users repository.UserRepository,
	notifier *Notifier, events EventPublisher, log *zap.SugaredLogger) *ConnectionService {
	return &ConnectionService{conns: conns, users: users, notifier: notifier, events: events, log: log}
}

// Request creates a fresh pending request. A leftover rejected record for
// the pair is discarded first; a pending or accepted one rejects the call.
func (s *ConnectionService) Request(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, apperr.ErrSelfRequest
	}
	if _, err := s.users.Get(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.conns.FindByPair(ctx, requesterID, receiverID)
	switch {
	case err == nil:
		if existing.Status == models.ConnectionPending || existing.Status == models.ConnectionAccepted {
			return nil, fmt.Errorf("%w: connection already %s", apperr.ErrDuplicate, existing.Status)
		}
		// A rejected record is replaceable; losing the delete race to a
		// concurrent request surfaces as ErrDuplicate on insert below.
		if err := s.conns.Delete(ctx, existing.ID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return nil, err
	}

	conn := &models.Connection{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
	}
	if err := s.conns.Insert(ctx, conn); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.PublishConnectionEvent(ctx, "connection_requested", conn)
	}

	requesterName := requesterID
	if requester, err := s.users.Get(ctx, requesterID); err == nil {
		requesterName = requester.DisplayName()
	}
	err = s.notifier.Notify(ctx, receiverID, requesterID, models.NotifConnectionRequest,
		conn.ID, requesterName+" sent you a connection request")
	if err != nil {
		s.log.Warnw("connection request notification failed", "connection_id", conn.ID, "err", err)
	}
	return conn, nil
}

// Respond lets the receiver accept or reject a pending request.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, actingUserID, action string) (*models.Connection, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, fmt.Errorf("%w: action must be accept or reject", apperr.ErrValidation)
	}
	conn, err := s.conns.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.ReceiverID != actingUserID {
		return nil, apperr.ErrForbidden
	}
	if conn.Status != models.ConnectionPending {
		return nil, fmt.Errorf("%w: request already %s", apperr.ErrInvalidState, conn.Status)
	}

	if action == ActionAccept {
		conn.Status = models.ConnectionAccepted
	} else {
		conn.Status = models.ConnectionRejected
	}
	if err := s.conns.UpdateStatus(ctx, connectionID, conn.Status); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.PublishConnectionEvent(ctx, "connection_"+conn.Status, conn)
	}

	notifType := models.NotifRequestAccepted
	text := "Your connection request was accepted"
	if conn.Status == models.ConnectionRejected {
		notifType = models.NotifRequestRejected
		text = "Your connection request was rejected"
	}
	err = s.notifier.Notify(ctx, conn.RequesterID, actingUserID, notifType, conn.ID, text)
	if err != nil {
		s.log.Warnw("connection response notification failed", "connection_id", conn.ID, "err", err)
	}
	return conn, nil
}

// Cancel withdraws a still-pending request. Requester only.
func (s *ConnectionService) Cancel(ctx context.Context, connectionID, actingUserID string) error {
	conn, err := s.conns.Get(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.RequesterID != actingUserID {
		return apperr.ErrForbidden
	}
	if conn.Status != models.ConnectionPending {
		return fmt.Errorf("%w: only pending requests can be cancelled", apperr.ErrInvalidState)
	}
	return s.conns.Delete(ctx, connectionID)
}

// Remove deletes an accepted connection, returning both users to the
// no-relationship state. Either participant may do it.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, actingUserID string) error {
	conn, err := s.conns.Get(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.Involves(actingUserID) {
		return apperr.ErrForbidden
	}
	if conn.Status != models.ConnectionAccepted {
		return fmt.Errorf("%w: only accepted connections can be removed", apperr.ErrInvalidState)
	}
	return s.conns.Delete(ctx, connectionID)
}

// Status resolves the relationship between two users as seen by the first.
func (s *ConnectionService) Status(ctx context.Context, userID, otherUserID string) (string, string, error) {
	conn, err := s.conns.FindByPair(ctx, userID, otherUserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.StatusNone, "", nil
		}
		return "", "", err
	}
	switch conn.Status {
	case models.ConnectionAccepted:
		return models.StatusConnected, conn.ID, nil
	case models.ConnectionPending:
		if conn.RequesterID == userID {
			return models.StatusSent, conn.ID, nil
		}
		return models.StatusReceived, conn.ID, nil
	default:
		// A lingering rejected record reads as no relationship.
		return models.StatusNone, "", nil
	}
}

func (s *ConnectionService) ListConnections(ctx context.Context, userID string) ([]*models.Connection, error) {
	return s.conns.ListAccepted(ctx, userID)
}

func (s *ConnectionService) ListPendingRequests(ctx context.Context, receiverID string) ([]*models.Connection, error) {
	return s.conns.ListPendingFor(ctx, receiverID)
}
