package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

// Notifier publishes status change notifications. Publish failures never fail
// the update itself.
type Notifier interface {
	PublishStatusUpdate(ctx context.Context, msg interface{}) error
}

// UpdateResult is the outcome of a ticket status update.
type UpdateResult struct {
	Ticket      models.Ticket      `json:"ticket"`
	OrderStatus models.OrderStatus `json:"order_status"`
}

// Service applies client-submitted ticket status changes and resynchronizes
// the owning order's aggregate status. Both the kitchen and the waiter route
// groups call this one service, so there is a single aggregation call site.
type Service struct {
	store    Store
	notifier Notifier
	logger   *logger.Logger
}

// NewService creates a new fulfillment service.
func NewService(store Store, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   log,
	}
}

// UpdateTicketStatus moves one ticket to newStatus and recomputes the owning
// order's status from the full sibling set, all inside one storage
// transaction. A storage failure is retried once; nothing is committed on the
// failed attempt, so the retry cannot duplicate effects.
func (s *Service) UpdateTicketStatus(ctx context.Context, ticketID int64, newStatus models.TicketStatus, actor, requestID string) (*UpdateResult, error) {
	result, err := s.updateOnce(ctx, ticketID, newStatus)
	if err != nil && retryable(err) {
		s.logger.Warn("ticket_update_retry", "Retrying ticket update after storage failure", requestID, map[string]interface{}{
			"ticket_id": ticketID,
		})
		result, err = s.updateOnce(ctx, ticketID, newStatus)
	}
	if err != nil {
		return nil, err
	}

	msg := models.NewStatusUpdateMessage(result.Ticket.OrderID, result.Ticket.ID,
		result.oldTicketStatus, newStatus, result.OrderStatus, actor)
	if pubErr := s.notifier.PublishStatusUpdate(ctx, msg); pubErr != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish status update", requestID, pubErr, map[string]interface{}{
			"order_id":  result.Ticket.OrderID,
			"ticket_id": result.Ticket.ID,
		})
	}

	s.logger.Info("ticket_status_updated", fmt.Sprintf("Ticket %d moved to %s", ticketID, newStatus), requestID, map[string]interface{}{
		"ticket_id":    ticketID,
		"order_id":     result.Ticket.OrderID,
		"order_status": result.OrderStatus,
		"changed_by":   actor,
	})

	return &result.UpdateResult, nil
}

type updateOutcome struct {
	UpdateResult
	oldTicketStatus models.TicketStatus
}

func (s *Service) updateOnce(ctx context.Context, ticketID int64, newStatus models.TicketStatus) (*updateOutcome, error) {
	var out updateOutcome

	err := s.store.Transact(ctx, func(tx Tx) error {
		probe, err := tx.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}

		order, err := tx.GetOrderForUpdate(ctx, probe.OrderID)
		if err != nil {
			return err
		}

		// Re-read under the order lock; concurrent updates for the same
		// order serialize here.
		ticket, err := tx.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		out.oldTicketStatus = ticket.Status

		// Cancellation is terminal and externally driven: a cancelled
		// order's tickets are frozen (they were cancelled with it).
		if order.Status == models.OrderCancelled {
			return ErrOrderCancelled
		}

		if !ticket.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticket.Status, newStatus)
		}

		if err := tx.UpdateTicketStatus(ctx, ticketID, newStatus); err != nil {
			return err
		}

		written := order.Status

		// Fast-path escalation: the first ticket to start preparing moves
		// the order out of pending immediately.
		if order.Status == models.OrderPending && newStatus == models.TicketPreparing {
			if err := tx.UpdateOrderStatus(ctx, order.ID, models.OrderPreparing); err != nil {
				return err
			}
			written = models.OrderPreparing
		}

		siblings, err := tx.ListTicketsByOrder(ctx, order.ID)
		if err != nil {
			return err
		}

		aggregated := Aggregate(models.TicketStatuses(siblings))
		if aggregated != written {
			if err := tx.UpdateOrderStatus(ctx, order.ID, aggregated); err != nil {
				return err
			}
		}

		ticket.Status = newStatus
		out.Ticket = ticket
		out.OrderStatus = aggregated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// retryable reports whether the error is a storage-level failure worth one
// retry. Domain errors surface to the caller immediately.
func retryable(err error) bool {
	return !errors.Is(err, ErrTicketNotFound) &&
		!errors.Is(err, ErrOrderNotFound) &&
		!errors.Is(err, ErrInvalidTransition) &&
		!errors.Is(err, ErrOrderCancelled)
}
