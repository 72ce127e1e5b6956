package models

import (
	"fmt"
	"time"
)

// OrderType represents the type of an order
type OrderType string

const (
	DineIn   OrderType = "dine_in"
	Takeaway OrderType = "takeaway"
	Delivery OrderType = "delivery"
)

// OrderStatus represents the fulfillment status of an order. Apart from the
// terminal cancelled state it is always derived from the order's ticket
// statuses, never set directly.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderPrepared  OrderStatus = "prepared"
	OrderCompleted OrderStatus = "completed"
	OrderServed    OrderStatus = "served"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents the payment state of an order. It is owned by the
// payment service and moves independently of the fulfillment status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethodRazorpay is the only gateway this system settles through.
const PaymentMethodRazorpay = "razorpay"

// Order represents a customer order
type Order struct {
	ID                  int64         `json:"id" db:"id"`
	CustomerID          string        `json:"customer_id" db:"customer_id"`
	StaffID             *string       `json:"staff_id,omitempty" db:"staff_id"`
	TableNumber         int           `json:"table_number" db:"table_number"`
	Type                OrderType     `json:"order_type" db:"order_type"`
	TotalPrice          float64       `json:"total_price" db:"total_price"`
	Status              OrderStatus   `json:"status" db:"status"`
	PaymentStatus       PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod       string        `json:"payment_method" db:"payment_method"`
	RazorpayOrderID     *string       `json:"razorpay_order_id,omitempty" db:"razorpay_order_id"`
	RazorpayPaymentID   *string       `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`
	SpecialInstructions string        `json:"special_instructions,omitempty" db:"special_instructions"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderItemRequest is one line item in a create-order request. Each item
// becomes a kitchen ticket.
type OrderItemRequest struct {
	ItemName       string  `json:"item_name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	Customizations string  `json:"customizations,omitempty"`
	PriorityLevel  int     `json:"priority_level,omitempty"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	TableNumber         int                `json:"table_number"`
	OrderType           string             `json:"order_type"`
	Items               []OrderItemRequest `json:"items"`
	SpecialInstructions string             `json:"special_instructions,omitempty"`

	// Set when the payment was verified before the order record existed
	// (payment-before-order checkout flow).
	RazorpayOrderID   *string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string `json:"razorpay_payment_id,omitempty"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID       int64   `json:"order_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalPrice    float64 `json:"total_price"`
}

// Validate checks the create order request against the business constraints.
func (req *CreateOrderRequest) Validate() error {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return err
	}

	if orderType == DineIn && req.TableNumber < 1 {
		return fmt.Errorf("table_number must be at least 1 for dine_in orders")
	}

	if err := validateItems(req.Items); err != nil {
		return err
	}

	if len(req.SpecialInstructions) > 500 {
		return fmt.Errorf("special_instructions must not exceed 500 characters")
	}

	// Pre-verified payment fields come as a pair or not at all
	if (req.RazorpayOrderID == nil) != (req.RazorpayPaymentID == nil) {
		return fmt.Errorf("razorpay_order_id and razorpay_payment_id must be provided together")
	}

	return nil
}

// CalculateTotalPrice calculates the total price for the order
func (req *CreateOrderRequest) CalculateTotalPrice() float64 {
	total := 0.0
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func validateOrderType(orderType string) (OrderType, error) {
	switch OrderType(orderType) {
	case DineIn, Takeaway, Delivery:
		return OrderType(orderType), nil
	default:
		return "", fmt.Errorf("order_type must be one of: dine_in, takeaway, delivery")
	}
}

func validateItems(items []OrderItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("items array cannot be empty")
	}
	if len(items) > 20 {
		return fmt.Errorf("items array cannot contain more than 20 items")
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)

		if len(item.ItemName) == 0 {
			return fmt.Errorf("%s.item_name is required", prefix)
		}
		if len(item.ItemName) > 100 {
			return fmt.Errorf("%s.item_name must not exceed 100 characters", prefix)
		}
		if item.Quantity < 1 || item.Quantity > 20 {
			return fmt.Errorf("%s.quantity must be between 1 and 20", prefix)
		}
		if item.Price < 0.01 || item.Price > 99999.99 {
			return fmt.Errorf("%s.price must be between 0.01 and 99999.99", prefix)
		}
	}

	return nil
}
