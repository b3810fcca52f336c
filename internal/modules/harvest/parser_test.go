package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderBody = `Order: 10234
Customer: Dana Levi
Phone: 050-1234567
Address: 12 Herzl St
City: Tel Aviv
Items:
- 2 x Sourdough Loaf @ 32.00
- 1 x Challah @ 18.00 (bake)
`

func TestParseOrder(t *testing.T) {
	req, err := ParseOrder(Message{ID: "m1", Subject: "New order", Body: orderBody})
	require.NoError(t, err)

	assert.Equal(t, "10234", req.OrderNumber)
	assert.Equal(t, "Dana Levi", req.CustomerName)
	assert.Equal(t, "050-1234567", req.Phone)
	assert.Equal(t, "Tel Aviv", req.City)

	require.Len(t, req.Items, 2)
	assert.Equal(t, "Sourdough Loaf", req.Items[0].ProductName)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.Equal(t, 32.0, req.Items[0].UnitPrice)
	assert.False(t, req.Items[0].NeedsBaking)
	assert.True(t, req.Items[1].NeedsBaking)
}

func TestParseOrderNumberFromSubject(t *testing.T) {
	body := "Customer: Dana Levi\n- 1 x Challah @ 18.00\n"
	req, err := ParseOrder(Message{ID: "m1", Subject: "New order #10555", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "10555", req.OrderNumber)
}

func TestParseOrderRejectsIncomplete(t *testing.T) {
	_, err := ParseOrder(Message{ID: "m1", Body: "- 1 x Challah @ 18.00\n"})
	assert.ErrorContains(t, err, "no customer line")

	_, err = ParseOrder(Message{ID: "m2", Body: "Customer: Dana Levi\nsome unrelated text\n"})
	assert.ErrorContains(t, err, "no item lines")
}

func TestParseInvoice(t *testing.T) {
	body := `Supplier: Flour Mills Ltd
Amount: ₪1250.50
Currency: ILS
Date: 2024-03-01
`
	req, err := ParseInvoice(Message{ID: "m9", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "Flour Mills Ltd", req.Supplier)
	assert.Equal(t, 1250.50, req.Amount)
	assert.Equal(t, "ILS", req.Currency)
	assert.Equal(t, "2024-03-01", req.IssuedAt)
	assert.Equal(t, "m9", req.MessageID)
}

func TestParseInvoiceSupplierFromSender(t *testing.T) {
	req, err := ParseInvoice(Message{
		ID:   "m9",
		From: `"Flour Mills" <billing@flourmills.example>`,
		Body: "Total: 300\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "Flour Mills", req.Supplier)
	assert.Equal(t, 300.0, req.Amount)
}

func TestParseInvoiceRejectsBadAmount(t *testing.T) {
	_, err := ParseInvoice(Message{ID: "m9", From: "x@y", Body: "Amount: twelve\n"})
	assert.ErrorContains(t, err, "bad amount")

	_, err = ParseInvoice(Message{ID: "m9", From: "x@y", Body: "Subject line only\n"})
	assert.ErrorContains(t, err, "no amount line")
}
