// Package digest composes the weekly plain-text market summary.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/query"
)

const dateLayout = "2006-01-02"

// Reports supplies the figures summarised by the digest.
type Reports interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	MarketInsights(ctx context.Context, c query.Criteria) (models.MarketInsights, error)
}

// Sender delivers the composed text.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Service builds and delivers the digest.
type Service struct {
	reports Reports
	sender  Sender
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a digest service.
func NewService(reports Reports, sender Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reports: reports, sender: sender, logger: logger, now: time.Now}
}

// Compose renders the digest for the current state of the store.
func (s *Service) Compose(ctx context.Context) (string, error) {
	day := s.now().UTC().Format(dateLayout)

	dash, err := s.reports.Dashboard(ctx)
	if err != nil {
		return "", fmt.Errorf("load dashboard: %w", err)
	}
	if dash.Summary.TotalEntries == 0 {
		return fmt.Sprintf("Market digest (%s): no records yet.", day), nil
	}

	insights, err := s.reports.MarketInsights(ctx, query.Criteria{})
	if err != nil {
		return "", fmt.Errorf("load market insights: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market digest (%s): %d entries worth %.2f across %d products.",
		day, dash.Summary.TotalEntries, dash.Summary.TotalMarketValue, dash.Summary.ProductTypes)

	if len(insights.TopProducts) > 0 {
		parts := make([]string, len(insights.TopProducts))
		for i, p := range insights.TopProducts {
			parts[i] = fmt.Sprintf("%s %.2f", p.ProductName, p.TotalValue)
		}
		fmt.Fprintf(&b, "\nTop products: %s.", strings.Join(parts, ", "))
	}

	if len(insights.GrowthAnalysis) > 0 {
		parts := make([]string, len(insights.GrowthAnalysis))
		for i, g := range insights.GrowthAnalysis {
			if g.QuantityGrowth == nil {
				parts[i] = g.ProductName + " new"
				continue
			}
			parts[i] = fmt.Sprintf("%s %+.1f%%", g.ProductName, *g.QuantityGrowth)
		}
		fmt.Fprintf(&b, "\nVolume vs previous 30 days: %s.", strings.Join(parts, ", "))
	}

	return b.String(), nil
}

// Run composes the digest and sends it.
func (s *Service) Run(ctx context.Context) error {
	text, err := s.Compose(ctx)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	s.logger.Info("market digest sent", zap.Int("length", len(text)))
	return nil
}
