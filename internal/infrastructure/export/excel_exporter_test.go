package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

func TestExcelExporter_Export(t *testing.T) {
	created := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)
	orders := []*entity.Order{
		{
			OrderNumber:       "PO-79927398713",
			ClientName:        "Acme",
			Items:             []string{"Cards", "Flyers"},
			Amount:            decimal.RequireFromString("1500.50"),
			PaidAmount:        decimal.NewFromInt(500),
			PendingAmount:     decimal.RequireFromString("1000.50"),
			PaymentStatus:     entity.PaymentStatusPartial,
			Status:            entity.OrderStatusInProgress,
			CurrentDepartment: entity.DepartmentProduction,
			CreatedAt:         created,
			LastUpdated:       created.Add(time.Hour),
		},
		{
			OrderNumber:       "PO-18",
			ClientName:        "Globex",
			Items:             []string{"Banner"},
			PaymentStatus:     entity.PaymentStatusPaid,
			Status:            entity.OrderStatusCompleted,
			CurrentDepartment: entity.DepartmentProduction,
			CreatedAt:         created,
			LastUpdated:       created,
			DispatchDetails:   &entity.DispatchDetails{Courier: "DHL", TrackingNumber: "TRK1"},
		},
	}

	exporter := NewExcelExporter("", zap.NewNop())
	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), orders, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])

	assert.Equal(t, "PO-79927398713", rows[1][0])
	assert.Equal(t, "Cards, Flyers", rows[1][2])
	assert.Equal(t, "1500.5", rows[1][3])
	assert.Equal(t, "Partial", rows[1][6])
	assert.Equal(t, "2024-05-06 09:30", rows[1][9])

	assert.Equal(t, "DHL", rows[2][11])
	assert.Equal(t, "TRK1", rows[2][12])
}

func TestExcelExporter_EmptyReport(t *testing.T) {
	exporter := NewExcelExporter("Report", zap.NewNop())
	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "xlsx", exporter.Extension())
	assert.Contains(t, exporter.ContentType(), "spreadsheetml")
}

func TestExcelExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExcelExporter("", zap.NewNop()).Export(ctx, []*entity.Order{{OrderNumber: "PO-18"}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
