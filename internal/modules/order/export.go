package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

var exportHeader = []string{
	"order_number", "type", "status", "customer", "phone", "city",
	"total", "currency", "picking_status", "shipping_method",
	"shipment_due_date", "pickup_preferred_date", "pickup_preferred_time",
	"delivery_status", "created_at",
}

// WriteCSV renders the orders as CSV for the store manager's export button.
func WriteCSV(w io.Writer, orders []*Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write(exportRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMarkdown renders the orders as a Markdown table.
func RenderMarkdown(orders []*Order) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(exportHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(exportHeader)) + "\n")
	for _, o := range orders {
		row := exportRow(o)
		for i, cell := range row {
			row[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

func exportRow(o *Order) []string {
	method := ""
	if o.ShippingMethod != nil {
		method = string(*o.ShippingMethod)
	}
	delivery := ""
	if o.DeliveryStatus != nil {
		delivery = string(*o.DeliveryStatus)
	}
	return []string{
		o.OrderNumber,
		string(o.OrderType),
		string(o.Status),
		o.CustomerName,
		o.Phone,
		o.City,
		fmt.Sprintf("%.2f", o.TotalAmount),
		o.Currency,
		string(o.PickingStatus),
		method,
		formatDay(o.ShipmentDueDate),
		formatDay(o.PickupPreferredDate),
		o.PickupPreferredTime,
		delivery,
		o.CreatedAt.Format(time.RFC3339),
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
