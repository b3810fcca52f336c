package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, order_number, order_type, status,
	customer_name, shipping_name, phone, secondary_phone, address, city,
	total_amount, currency,
	picking_status, picking_started_at, picking_completed_at, location_bag_summary,
	baking_status, notes_for_baker, original_order_id,
	shipping_method, courier_company, shipment_due_date, pickup_preferred_date, pickup_preferred_time,
	delivery_status, delivered_by, delivered_at, delivery_photo_url, delivery_notes, non_delivery_reason,
	return_reason, returned_by, returned_at,
	notes, created_at, updated_at`

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, order_number, order_type, status,
		   customer_name, shipping_name, phone, secondary_phone, address, city,
		   total_amount, currency,
		   picking_status, picking_started_at, picking_completed_at, location_bag_summary,
		   baking_status, notes_for_baker, original_order_id,
		   shipping_method, courier_company, shipment_due_date, pickup_preferred_date, pickup_preferred_time,
		   delivery_status, delivered_by, delivered_at, delivery_photo_url, delivery_notes, non_delivery_reason,
		   return_reason, returned_by, returned_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
		        $20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34)`,
		o.ID, o.OrderNumber, o.OrderType, o.Status,
		o.CustomerName, o.ShippingName, o.Phone, o.SecondaryPhone, o.Address, o.City,
		o.TotalAmount, o.Currency,
		o.PickingStatus, o.PickingStartedAt, o.PickingCompletedAt, nullableJSON(o.LocationBagSummary),
		nullableStr(string(o.BakingStatus)), o.NotesForBaker, o.OriginalOrderID,
		methodOrNil(o.ShippingMethod), o.CourierCompany, o.ShipmentDueDate, o.PickupPreferredDate, o.PickupPreferredTime,
		deliveryOrNil(o.DeliveryStatus), o.DeliveredBy, o.DeliveredAt, o.DeliveryPhotoURL, o.DeliveryNotes, o.NonDeliveryReason,
		o.ReturnReason, o.ReturnedBy, o.ReturnedAt, o.Notes)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_name, quantity, unit_price, line_total,
			   picked_quantity, baked_quantity, needs_baking, location_breakdown)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			item.ID, o.ID, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal,
			item.PickedQuantity, item.BakedQuantity, item.NeedsBaking,
			nullableJSON(item.LocationBreakdown))
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, orderNumber))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) ListOrders(ctx context.Context, status string, orderType string) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []interface{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if orderType != "" {
		args = append(args, orderType)
		query += fmt.Sprintf(` AND order_type=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, args...)
}

func (r *postgresRepo) ListByOriginalOrder(ctx context.Context, originalOrderID string) ([]*Order, error) {
	uid, err := uuid.Parse(originalOrderID)
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE original_order_id=$1 ORDER BY created_at ASC`, uid)
}

func (r *postgresRepo) UpdateOrder(ctx context.Context, o *Order) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
		  status=$1, picking_status=$2, picking_started_at=$3, picking_completed_at=$4,
		  location_bag_summary=$5, baking_status=$6, notes_for_baker=$7,
		  shipping_method=$8, courier_company=$9, shipment_due_date=$10,
		  pickup_preferred_date=$11, pickup_preferred_time=$12,
		  delivery_status=$13, delivered_by=$14, delivered_at=$15,
		  delivery_photo_url=$16, delivery_notes=$17, non_delivery_reason=$18,
		  return_reason=$19, returned_by=$20, returned_at=$21,
		  notes=$22, total_amount=$23, updated_at=$24
		WHERE id=$25`,
		o.Status, o.PickingStatus, o.PickingStartedAt, o.PickingCompletedAt,
		nullableJSON(o.LocationBagSummary), nullableStr(string(o.BakingStatus)), o.NotesForBaker,
		methodOrNil(o.ShippingMethod), o.CourierCompany, o.ShipmentDueDate,
		o.PickupPreferredDate, o.PickupPreferredTime,
		deliveryOrNil(o.DeliveryStatus), o.DeliveredBy, o.DeliveredAt,
		o.DeliveryPhotoURL, o.DeliveryNotes, o.NonDeliveryReason,
		o.ReturnReason, o.ReturnedBy, o.ReturnedAt,
		o.Notes, o.TotalAmount, time.Now(), o.ID)
	return err
}

func (r *postgresRepo) UpdateItems(ctx context.Context, items []*OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			UPDATE order_items SET
			  picked_quantity=$1, baked_quantity=$2, location_breakdown=$3, updated_at=$4
			WHERE id=$5`,
			item.PickedQuantity, item.BakedQuantity, nullableJSON(item.LocationBreakdown),
			time.Now(), item.ID)
		if err != nil {
			return fmt.Errorf("update order_item: %w", err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) ListDueShipments(ctx context.Context, cutoff time.Time) ([]*Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status IN ($1, $2) AND shipment_due_date IS NOT NULL AND shipment_due_date < $3
		ORDER BY shipment_due_date ASC`,
		StatusWaitingForShipment, StatusWithCourier, cutoff)
}

func (r *postgresRepo) ListDuePickups(ctx context.Context, day time.Time) ([]*Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status=$1 AND pickup_preferred_date IS NOT NULL AND pickup_preferred_date <= $2
		ORDER BY pickup_preferred_date ASC`,
		StatusWaitingForPickup, day)
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var (
		bagSummary     []byte
		bakingStatus   sql.NullString
		originalID     sql.NullString
		shippingMethod sql.NullString
		deliveryStatus sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.OrderType, &o.Status,
		&o.CustomerName, &o.ShippingName, &o.Phone, &o.SecondaryPhone, &o.Address, &o.City,
		&o.TotalAmount, &o.Currency,
		&o.PickingStatus, &o.PickingStartedAt, &o.PickingCompletedAt, &bagSummary,
		&bakingStatus, &o.NotesForBaker, &originalID,
		&shippingMethod, &o.CourierCompany, &o.ShipmentDueDate, &o.PickupPreferredDate, &o.PickupPreferredTime,
		&deliveryStatus, &o.DeliveredBy, &o.DeliveredAt, &o.DeliveryPhotoURL, &o.DeliveryNotes, &o.NonDeliveryReason,
		&o.ReturnReason, &o.ReturnedBy, &o.ReturnedAt,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.LocationBagSummary = bagSummary
	if bakingStatus.Valid {
		o.BakingStatus = BakingStatus(bakingStatus.String)
	}
	if originalID.Valid {
		uid, err := uuid.Parse(originalID.String)
		if err == nil {
			o.OriginalOrderID = &uid
		}
	}
	if shippingMethod.Valid {
		m := ShippingMethod(shippingMethod.String)
		o.ShippingMethod = &m
	}
	if deliveryStatus.Valid {
		d := DeliveryStatus(deliveryStatus.String)
		o.DeliveryStatus = &d
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Items, err = r.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_name, quantity, unit_price, line_total,
		       picked_quantity, baked_quantity, needs_baking, location_breakdown,
		       created_at, updated_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		item := &OrderItem{}
		var breakdown []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.LineTotal,
			&item.PickedQuantity, &item.BakedQuantity, &item.NeedsBaking,
			&breakdown, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.LocationBreakdown = breakdown
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullableStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func methodOrNil(m *ShippingMethod) interface{} {
	if m == nil {
		return nil
	}
	return string(*m)
}

func deliveryOrNil(d *DeliveryStatus) interface{} {
	if d == nil {
		return nil
	}
	return string(*d)
}
