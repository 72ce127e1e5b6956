package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/messaging"
	"restaurant-orders/internal/models"
)

// Subscriber consumes the kitchen display queue and renders order and payment
// events for the staff-facing console.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new kitchen display subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start starts the subscriber and blocks until shutdown
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Kitchen display subscriber started", requestID, nil)

	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleMessage); err != nil {
			s.logger.Error("consumer_failed", "Kitchen display consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.gracefulShutdown(requestID)
	case <-s.done:
		return nil
	}
}

// messageProbe carries just enough fields to tell the two event kinds apart.
// Status updates always have a new ticket status; payment events always have
// a payment status.
type messageProbe struct {
	NewTicketState string            `json:"new_ticket_status"`
	PaymentStatus  string            `json:"payment_status"`
	Items          []json.RawMessage `json:"items"`
}

// handleMessage processes one message from the kitchen display queue
func (s *Subscriber) handleMessage(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var probe messageProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse display message", requestID, err, nil)
		return fmt.Errorf("failed to parse display message: %w", err)
	}

	switch {
	case probe.NewTicketState != "":
		var update models.StatusUpdateMessage
		if err := json.Unmarshal(body, &update); err != nil {
			return fmt.Errorf("failed to parse status update: %w", err)
		}
		s.displayStatusUpdate(&update, requestID)
	case probe.PaymentStatus != "":
		var event models.PaymentEventMessage
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to parse payment event: %w", err)
		}
		s.displayPaymentEvent(&event, requestID)
	case len(probe.Items) > 0:
		var created models.OrderCreatedMessage
		if err := json.Unmarshal(body, &created); err != nil {
			return fmt.Errorf("failed to parse order created message: %w", err)
		}
		s.displayOrderCreated(&created, requestID)
	default:
		s.logger.Warn("message_unrecognized", "Dropping message of unknown kind", requestID, map[string]interface{}{
			"message_size": len(body),
		})
	}

	return nil
}

func (s *Subscriber) displayStatusUpdate(update *models.StatusUpdateMessage, requestID string) {
	fmt.Println(s.formatStatusUpdate(update))

	s.logger.Info("notification_displayed", "Status update displayed", requestID, map[string]interface{}{
		"order_id":          update.OrderID,
		"ticket_id":         update.TicketID,
		"old_ticket_status": update.OldTicketState,
		"new_ticket_status": update.NewTicketState,
		"order_status":      update.OrderStatus,
		"changed_by":        update.ChangedBy,
	})
}

func (s *Subscriber) displayPaymentEvent(event *models.PaymentEventMessage, requestID string) {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")

	var message string
	switch models.PaymentStatus(event.PaymentStatus) {
	case models.PaymentCompleted:
		message = fmt.Sprintf("💳 [%s] Payment received for order %d.", timestamp, event.OrderID)
	case models.PaymentFailed:
		message = fmt.Sprintf("⚠️ [%s] Payment FAILED for order %d, hold preparation.", timestamp, event.OrderID)
	case models.PaymentRefunded:
		message = fmt.Sprintf("↩️ [%s] Payment refunded for order %d.", timestamp, event.OrderID)
	default:
		message = fmt.Sprintf("💳 [%s] Order %d payment status changed to '%s'.", timestamp, event.OrderID, event.PaymentStatus)
	}
	fmt.Println(message)

	s.logger.Info("notification_displayed", "Payment event displayed", requestID, map[string]interface{}{
		"order_id":       event.OrderID,
		"payment_status": event.PaymentStatus,
	})
}

func (s *Subscriber) displayOrderCreated(created *models.OrderCreatedMessage, requestID string) {
	timestamp := created.Timestamp.Format("2006-01-02 15:04:05")

	fmt.Printf("🆕 [%s] New %s order %d with %d tickets:\n", timestamp, created.OrderType, created.OrderID, len(created.Items))
	for _, item := range created.Items {
		line := fmt.Sprintf("   • #%d %dx %s", item.TicketID, item.Quantity, item.ItemName)
		if item.Customizations != "" {
			line += fmt.Sprintf(" (%s)", item.Customizations)
		}
		fmt.Println(line)
	}
	if created.SpecialInstructions != "" {
		fmt.Printf("   ⚠ %s\n", created.SpecialInstructions)
	}

	s.logger.Info("notification_displayed", "New order displayed", requestID, map[string]interface{}{
		"order_id":     created.OrderID,
		"order_type":   created.OrderType,
		"ticket_count": len(created.Items),
	})
}

// formatStatusUpdate creates a human-readable line for a ticket change
func (s *Subscriber) formatStatusUpdate(update *models.StatusUpdateMessage) string {
	timestamp := update.Timestamp.Format("2006-01-02 15:04:05")

	switch models.TicketStatus(update.NewTicketState) {
	case models.TicketPreparing:
		return fmt.Sprintf("🍳 [%s] Ticket %d (order %d) is now being prepared by %s.",
			timestamp, update.TicketID, update.OrderID, update.ChangedBy)
	case models.TicketPrepared:
		return fmt.Sprintf("✅ [%s] Ticket %d (order %d) is ready! Order is now '%s'.",
			timestamp, update.TicketID, update.OrderID, update.OrderStatus)
	case models.TicketServed:
		return fmt.Sprintf("🍽️ [%s] Ticket %d (order %d) served by %s. Order is now '%s'.",
			timestamp, update.TicketID, update.OrderID, update.ChangedBy, update.OrderStatus)
	case models.TicketCompleted:
		return fmt.Sprintf("🎉 [%s] Ticket %d (order %d) completed. Order is now '%s'.",
			timestamp, update.TicketID, update.OrderID, update.OrderStatus)
	case models.TicketCancelled:
		return fmt.Sprintf("❌ [%s] Ticket %d (order %d) has been cancelled.",
			timestamp, update.TicketID, update.OrderID)
	default:
		return fmt.Sprintf("📋 [%s] Ticket %d (order %d) moved from '%s' to '%s' by %s.",
			timestamp, update.TicketID, update.OrderID, update.OldTicketState, update.NewTicketState, update.ChangedBy)
	}
}

func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if s.consumer != nil {
		s.consumer.Close()
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
