package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/query"
)

type stubReports struct {
	dash     models.Dashboard
	insights models.MarketInsights
	err      error
}

func (s stubReports) Dashboard(context.Context) (models.Dashboard, error) { return s.dash, s.err }

func (s stubReports) MarketInsights(context.Context, query.Criteria) (models.MarketInsights, error) {
	return s.insights, s.err
}

type captureSender struct {
	sent []string
	err  error
}

func (c *captureSender) Send(_ context.Context, text string) error {
	c.sent = append(c.sent, text)
	return c.err
}

func newService(r Reports, s Sender) *Service {
	svc := NewService(r, s, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) }
	return svc
}

func growth(v float64) *float64 { return &v }

func TestCompose(t *testing.T) {
	reports := stubReports{
		dash: models.Dashboard{Summary: models.DashboardSummary{
			TotalEntries: 3, TotalMarketValue: 117500, ProductTypes: 3,
		}},
		insights: models.MarketInsights{
			TopProducts: []models.TopProduct{
				{ProductName: "Beef", TotalValue: 45000},
				{ProductName: "Chicken", TotalValue: 40000},
			},
			GrowthAnalysis: []models.Growth{
				{ProductName: "Beef", QuantityGrowth: growth(50)},
				{ProductName: "Chicken"},
				{ProductName: "Lamb", QuantityGrowth: growth(-12.5)},
			},
		},
	}

	text, err := newService(reports, &captureSender{}).Compose(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		"Market digest (2024-06-03): 3 entries worth 117500.00 across 3 products.\n"+
			"Top products: Beef 45000.00, Chicken 40000.00.\n"+
			"Volume vs previous 30 days: Beef +50.0%, Chicken new, Lamb -12.5%.",
		text)
}

func TestCompose_emptyStore(t *testing.T) {
	text, err := newService(stubReports{}, &captureSender{}).Compose(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Market digest (2024-06-03): no records yet.", text)
}

func TestRun(t *testing.T) {
	sender := &captureSender{}
	require.NoError(t, newService(stubReports{}, sender).Run(context.Background()))
	assert.Equal(t, []string{"Market digest (2024-06-03): no records yet."}, sender.sent)

	boom := errors.New("webhook down")
	err := newService(stubReports{}, &captureSender{err: boom}).Run(context.Background())
	assert.ErrorIs(t, err, boom)

	sender = &captureSender{}
	err = newService(stubReports{err: boom}, sender).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sender.sent)
}
