package harvest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bakehouse/bakehouse-backend/internal/modules/invoice"
	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
)

// Expected order email shape (produced by the web shop's notification mails):
//
//	Order: 10234
//	Customer: Dana Levi
//	Phone: 050-1234567
//	Address: 12 Herzl St
//	City: Tel Aviv
//	Items:
//	- 2 x Sourdough Loaf @ 32.00
//	- 1 x Challah @ 18.00 (bake)
var itemLine = regexp.MustCompile(`^-\s*(\d+)\s*x\s*(.+?)\s*@\s*([\d.]+)\s*(\(bake\))?\s*$`)

var subjectOrderNumber = regexp.MustCompile(`#\s*([A-Za-z0-9-]+)`)

// ParseOrder extracts an order-creation request from an email body. The
// message ID is recorded separately; the request carries only order fields.
func ParseOrder(m Message) (*order.CreateOrderRequest, error) {
	fields := parseFields(m.Body)

	req := &order.CreateOrderRequest{
		OrderNumber:  fields["order"],
		CustomerName: fields["customer"],
		Phone:        fields["phone"],
		Address:      fields["address"],
		City:         fields["city"],
		Notes:        fields["notes"],
	}
	if req.OrderNumber == "" {
		if match := subjectOrderNumber.FindStringSubmatch(m.Subject); match != nil {
			req.OrderNumber = match[1]
		}
	}
	if req.CustomerName == "" {
		return nil, fmt.Errorf("message %s: no customer line", m.ID)
	}

	for _, line := range strings.Split(m.Body, "\n") {
		match := itemLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		qty, _ := strconv.Atoi(match[1])
		price, _ := strconv.ParseFloat(match[3], 64)
		req.Items = append(req.Items, order.NewItemRequest{
			ProductName: match[2],
			Quantity:    qty,
			UnitPrice:   price,
			NeedsBaking: match[4] != "",
		})
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("message %s: no item lines", m.ID)
	}
	return req, nil
}

// ParseInvoice extracts an invoice-creation request from an email body.
func ParseInvoice(m Message) (*invoice.CreateInvoiceRequest, error) {
	fields := parseFields(m.Body)

	supplier := fields["supplier"]
	if supplier == "" {
		supplier = senderName(m.From)
	}
	if supplier == "" {
		return nil, fmt.Errorf("message %s: no supplier", m.ID)
	}

	amountStr := fields["amount"]
	if amountStr == "" {
		amountStr = fields["total"]
	}
	if amountStr == "" {
		return nil, fmt.Errorf("message %s: no amount line", m.ID)
	}
	amount, err := strconv.ParseFloat(strings.TrimLeft(amountStr, "₪$€ "), 64)
	if err != nil {
		return nil, fmt.Errorf("message %s: bad amount %q", m.ID, amountStr)
	}

	return &invoice.CreateInvoiceRequest{
		Supplier:  supplier,
		Amount:    amount,
		Currency:  fields["currency"],
		MessageID: m.ID,
		IssuedAt:  fields["date"],
		Notes:     fields["notes"],
	}, nil
}

// parseFields reads "Key: value" lines into a lowercase-keyed map.
func parseFields(body string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || strings.Contains(key, " ") {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

// senderName extracts the display name out of `Name <addr@example.com>`.
func senderName(from string) string {
	if i := strings.Index(from, "<"); i > 0 {
		return strings.Trim(strings.TrimSpace(from[:i]), `"`)
	}
	return strings.TrimSpace(from)
}
