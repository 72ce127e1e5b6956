package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_id, table_number, order_type, total_price, status,
			payment_status, payment_method, razorpay_order_id, razorpay_payment_id, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	GetOrderSQL = `
		SELECT id, customer_id, staff_id, table_number, order_type, total_price, status,
			   payment_status, payment_method, razorpay_order_id, razorpay_payment_id,
			   special_instructions, created_at, updated_at
		FROM orders WHERE id = $1`

	GetOrderForUpdateSQL = GetOrderSQL + ` FOR UPDATE`

	GetOrderByGatewayOrderSQL = `
		SELECT id, customer_id, staff_id, table_number, order_type, total_price, status,
			   payment_status, payment_method, razorpay_order_id, razorpay_payment_id,
			   special_instructions, created_at, updated_at
		FROM orders WHERE razorpay_order_id = $1`

	GetOrderByGatewayPaymentSQL = `
		SELECT id, customer_id, staff_id, table_number, order_type, total_price, status,
			   payment_status, payment_method, razorpay_order_id, razorpay_payment_id,
			   special_instructions, created_at, updated_at
		FROM orders WHERE razorpay_payment_id = $1`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2`

	CancelOrderSQL = `
		UPDATE orders SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1`

	SetGatewayOrderSQL = `
		UPDATE orders SET razorpay_order_id = $1, payment_method = $2, updated_at = NOW()
		WHERE id = $3`

	MarkOrderPaidSQL = `
		UPDATE orders SET payment_status = 'completed', payment_method = $1,
			razorpay_order_id = $2, razorpay_payment_id = $3, updated_at = NOW()
		WHERE id = $4`

	UpdatePaymentStatusSQL = `
		UPDATE orders SET payment_status = $1, updated_at = NOW()
		WHERE id = $2`

	UpdatePaymentStatusByGatewayOrderSQL = `
		UPDATE orders SET payment_status = $1, razorpay_payment_id = COALESCE($2, razorpay_payment_id), updated_at = NOW()
		WHERE razorpay_order_id = $3`
)

// Ticket queries
const (
	InsertTicketSQL = `
		INSERT INTO tickets (order_id, item_name, quantity, customizations, status, priority_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	GetTicketSQL = `
		SELECT id, order_id, item_name, quantity, customizations, status, priority_level, created_at, updated_at
		FROM tickets WHERE id = $1`

	ListTicketsByOrderSQL = `
		SELECT id, order_id, item_name, quantity, customizations, status, priority_level, created_at, updated_at
		FROM tickets WHERE order_id = $1
		ORDER BY priority_level ASC, id ASC`

	UpdateTicketStatusSQL = `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2`

	CancelActiveTicketsSQL = `
		UPDATE tickets SET status = 'cancelled', updated_at = NOW()
		WHERE order_id = $1 AND status NOT IN ('served', 'completed', 'cancelled')`
)
