package domain

import (
	"strconv"
	"time"
)

// isoMillis matches the timestamp format downstream sheets already parse.
const isoMillis = "2006-01-02T15:04:05.000Z"

// OrderColumns is the column order of the flat order record.
var OrderColumns = []string{
	"Order ID",
	"Customer Name",
	"Customer Email",
	"Phone",
	"City",
	"Address",
	"Postal Code",
	"COD Amount",
	"Tracking Number",
	"Courier",
	"Total",
	"Date",
	"Status",
	"Payment Method",
	"Product",
	"Quantity",
	"Note",
}

// Fields flattens the order into human-readable string columns.
func (o Order) Fields() map[string]string {
	total := RoundForDisplay(o.Total)
	return map[string]string{
		"Order ID":        o.ID,
		"Customer Name":   o.FullName(),
		"Customer Email":  o.Email,
		"Phone":           o.Phone,
		"City":            o.City,
		"Address":         o.Address,
		"Postal Code":     o.PostalCode,
		"COD Amount":      total,
		"Tracking Number": o.TrackingNumber,
		"Courier":         o.Courier,
		"Total":           total,
		"Date":            o.CreatedAt.UTC().Format(isoMillis),
		"Status":          "New",
		"Payment Method":  o.PaymentMethod.DisplayName(),
		"Product":         o.ProductSummary(),
		"Quantity":        strconv.Itoa(o.Quantity()),
		"Note":            o.Note,
	}
}

// RequestFields is the flat record of a return or exchange request.
func RequestFields(kind, orderID, phone, note string, at time.Time) map[string]string {
	return map[string]string{
		"Request Type": kind,
		"Order ID":     orderID,
		"Phone":        phone,
		"Note":         note,
		"Date":         at.UTC().Format(isoMillis),
	}
}
