package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OrderExport describes an uploaded order workbook
type OrderExport struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Orders      int       `json:"orders"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportService renders order listings as xlsx workbooks and stores them
type ExportService struct {
	orders  OrderGateway
	storage ObjectStorage
}

func NewExportService(orders OrderGateway, storage ObjectStorage) *ExportService {
	return &ExportService{orders: orders, storage: storage}
}

// ExportOrders writes the filtered orders to a workbook with an Orders sheet
// and an Items sheet, uploads it, and returns a download link
func (s *ExportService) ExportOrders(ctx context.Context, actor session.Actor, filter OrderFilter) (*OrderExport, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown order status %q", *filter.Status)
	}

	orders, err := s.orders.GetOrders(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	ordersSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(ordersSheet, "Orders"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	ordersSheet = "Orders"
	if _, err := f.NewSheet("Items"); err != nil {
		return nil, fmt.Errorf("create items sheet: %w", err)
	}

	orderHeader := []interface{}{"Order #", "Customer", "Order Date", "Due Date", "Status", "Total"}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeader); err != nil {
		return nil, fmt.Errorf("write orders header: %w", err)
	}
	itemHeader := []interface{}{"Order #", "Product", "Quantity", "Unit Price", "Line Total"}
	if err := f.SetSheetRow("Items", "A1", &itemHeader); err != nil {
		return nil, fmt.Errorf("write items header: %w", err)
	}

	itemRow := 2
	for i, o := range orders {
		dueDate := ""
		if o.DueDate != nil {
			dueDate = o.DueDate.Format("2006-01-02")
		}
		total, _ := o.TotalAmount.Float64()
		row := []interface{}{
			o.OrderNumber,
			o.Customer.Name,
			o.OrderDate.Format("2006-01-02"),
			dueDate,
			string(o.Status),
			total,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write order row: %w", err)
		}

		for _, item := range o.Items {
			unit, _ := item.UnitPrice.Float64()
			line, _ := item.LineTotal().Float64()
			row := []interface{}{o.OrderNumber, item.Product.Name, item.Quantity, unit, line}
			cell, err := excelize.CoordinatesToCellName(1, itemRow)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow("Items", cell, &row); err != nil {
				return nil, fmt.Errorf("write item row: %w", err)
			}
			itemRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("exports/%s/orders_%s_%s.xlsx",
		objectKeySegment(actor.ID), now.Format("20060102T150405"), uuid.NewString()[:8])
	if err := s.storage.PutObject(ctx, key, xlsxContentType, buf.Bytes()); err != nil {
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, key)
	if err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			logging.FromContext(ctx).Warn("failed to remove unreachable export", "key", key, "error", delErr)
		}
		return nil, err
	}

	return &OrderExport{Key: key, URL: url, Orders: len(orders), GeneratedAt: now}, nil
}

// objectKeySegment makes an actor id safe for use inside an object key
func objectKeySegment(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
