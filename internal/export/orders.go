package export

import (
	"io"

	"github.com/mhhmod/tes3/internal/domain"
	"github.com/tealeg/xlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteOrdersXLSX writes one sheet with a header row and one row per order,
// using the same columns as the order webhook payload.
func WriteOrdersXLSX(w io.Writer, orders []domain.Order, currency string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, col := range domain.OrderColumns {
		header.AddCell().SetValue(col)
	}
	header.AddCell().SetValue("Currency")

	for _, o := range orders {
		fields := o.Fields()
		row := sheet.AddRow()
		for _, col := range domain.OrderColumns {
			row.AddCell().SetValue(fields[col])
		}
		row.AddCell().SetValue(currency)
	}

	return file.Write(w)
}
