package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

const (
	// DefaultSheetName is used when no sheet name is configured
	DefaultSheetName = "Orders"

	dateLayout = "2006-01-02 15:04"
)

var headers = []string{
	"Order Number", "Client", "Items", "Amount", "Paid", "Pending", "Payment Status",
	"Status", "Department", "Created", "Last Updated", "Courier", "Tracking Number",
}

// ExcelExporter writes order reports as xlsx workbooks
type ExcelExporter struct {
	sheetName string
	logger    *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(sheetName string, logger *zap.Logger) *ExcelExporter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &ExcelExporter{
		sheetName: sheetName,
		logger:    logger,
	}
}

// Export writes one header row followed by a row per order
func (e *ExcelExporter) Export(ctx context.Context, orders []*entity.Order, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(e.sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := orderRow(o)
		if err := f.SetSheetRow(e.sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write order %s: %w", o.OrderNumber, err)
		}
	}

	if err := f.SetColWidth(e.sheetName, "A", lastCol, 18); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Order report exported", zap.Int("orders", len(orders)))
	return nil
}

func orderRow(o *entity.Order) []interface{} {
	var courier, tracking string
	if o.DispatchDetails != nil {
		courier = o.DispatchDetails.Courier
		tracking = o.DispatchDetails.TrackingNumber
	}

	return []interface{}{
		o.OrderNumber,
		o.ClientName,
		strings.Join(o.Items, ", "),
		o.Amount.InexactFloat64(),
		o.PaidAmount.InexactFloat64(),
		o.PendingAmount.InexactFloat64(),
		string(o.PaymentStatus),
		string(o.Status),
		string(o.CurrentDepartment),
		o.CreatedAt.Format(dateLayout),
		o.LastUpdated.Format(dateLayout),
		courier,
		tracking,
	}
}

// ContentType is the MIME type of xlsx workbooks
func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) Extension() string {
	return "xlsx"
}

var _ port.OrderExporter = (*ExcelExporter)(nil)
