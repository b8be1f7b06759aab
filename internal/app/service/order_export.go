package service

import (
	"context"
	"io"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet = "الطلبات"
	itemsSheet  = "المنتجات"

	// built-in number format "0.00"
	moneyNumFmt = 2
)

var orderExportHeader = []interface{}{
	"رقم الطلب", "التاريخ", "العميل", "البريد الإلكتروني", "الهاتف", "المدينة", "العنوان",
	"طريقة الدفع", "الحالة", "المجموع الفرعي", "الشحن", "الضريبة", "الإجمالي", "رقم التتبع",
}

var itemExportHeader = []interface{}{
	"رقم الطلب", "المنتج", "المنتج (عربي)", "سعر الوحدة", "الكمية", "الإجمالي",
}

// OrderExporter writes orders as an XLSX workbook with one sheet of orders
// and one sheet of their line items.
type OrderExporter struct {
	orderRepo repository.OrderRepository
}

func NewOrderExporter(orderRepo repository.OrderRepository) *OrderExporter {
	return &OrderExporter{orderRepo: orderRepo}
}

// Export writes every order matching filter to w and returns how many were
// written. Pagination in filter is ignored.
func (e *OrderExporter) Export(ctx context.Context, filter repository.OrderFilter, w io.Writer) (int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return 0, ErrInvalidOrderStatus
	}
	orders, err := e.orderRepo.FindForExport(filter)
	if err != nil {
		return 0, apperrors.Upstream(err, "order")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close workbook", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), ordersSheet); err != nil {
		return 0, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return 0, err
	}
	for _, sheet := range []string{ordersSheet, itemsSheet} {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
			return 0, err
		}
	}

	if err := f.SetSheetRow(ordersSheet, "A1", &orderExportHeader); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemExportHeader); err != nil {
		return 0, err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return 0, err
	}

	itemRow := 2
	for i, order := range orders {
		if err := writeExportRow(f, ordersSheet, i+2, exportOrderRow(&order), moneyStyle); err != nil {
			return 0, err
		}
		for _, item := range order.OrderItems {
			line := []interface{}{
				order.OrderNumber,
				item.ProductName,
				item.ProductNameAr,
				item.UnitPrice,
				item.Quantity,
				item.LineTotal,
			}
			if err := writeExportRow(f, itemsSheet, itemRow, line, moneyStyle); err != nil {
				return 0, err
			}
			itemRow++
		}
	}

	if err := f.Write(w); err != nil {
		return 0, apperrors.Upstream(err, "export")
	}
	return len(orders), nil
}

// writeExportRow writes values from column A. Decimals are stored as numeric
// cells holding their exact two-place text, so no float conversion happens.
func writeExportRow(f *excelize.File, sheet string, row int, values []interface{}, moneyStyle int) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		amount, ok := value.(decimal.Decimal)
		if !ok {
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			continue
		}
		if err := f.SetCellDefault(sheet, cell, amount.StringFixed(2)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, moneyStyle); err != nil {
			return err
		}
	}
	return nil
}

func exportOrderRow(order *model.Order) []interface{} {
	customer, email := order.ShippingAddress.FullName, ""
	if order.User != nil {
		email = order.User.Email
		if customer == "" {
			customer = order.User.Name
		}
	}
	return []interface{}{
		order.OrderNumber,
		order.CreatedAt.Format("2006-01-02 15:04"),
		customer,
		email,
		order.ShippingAddress.Phone,
		order.ShippingAddress.City,
		order.ShippingAddress.Address,
		string(order.PaymentMethod),
		string(order.Status),
		order.Subtotal,
		order.ShippingCost,
		order.TaxAmount,
		order.TotalAmount,
		order.TrackingNumber,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
