package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// TotalKey is the counts entry holding the number of all evaluations.
const TotalKey = "total"

// EvaluationCounter counts stored evaluations.
type EvaluationCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context, diabetesType string) (int64, error)
}

// Statistics summarizes the evaluation history by predicted type.
type Statistics struct {
	Counts           map[string]int64  `json:"conteos"`
	Percentages      map[string]string `json:"porcentajes,omitempty"`
	MostCommonType   string            `json:"tipo_mas_comun,omitempty"`
	MostCommonCount  int64             `json:"conteo_mas_comun,omitempty"`
	CommonTotal      int64             `json:"tipos_comunes_total"`
	RareTotal        int64             `json:"tipos_raros_total"`
	CommonPercentage string            `json:"porcentaje_comunes,omitempty"`
	RarePercentage   string            `json:"porcentaje_raros,omitempty"`
	GeneratedAt      time.Time         `json:"fecha_consulta"`
}

// StatisticsService computes history statistics.
type StatisticsService struct {
	counter EvaluationCounter
	logger  *logrus.Logger
	now     func() time.Time
}

// NewStatisticsService creates a statistics service.
func NewStatisticsService(counter EvaluationCounter, logger *logrus.Logger) *StatisticsService {
	return &StatisticsService{
		counter: counter,
		logger:  logger,
		now:     time.Now,
	}
}

// Counts returns the number of evaluations per type plus the total under
// TotalKey. A failed per-type count is logged and reported as zero.
func (s *StatisticsService) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(domain.DiabetesTypes)+1)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, t := range domain.DiabetesTypes {
		g.Go(func() error {
			n, err := s.counter.CountByType(gctx, t)
			if err != nil {
				s.logger.WithError(err).WithField("diabetes_type", t).Warn("Failed to count evaluations for type")
				n = 0
			}
			mu.Lock()
			counts[t] = n
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		total, err := s.counter.Count(gctx)
		if err != nil {
			return fmt.Errorf("failed to count evaluations: %w", err)
		}
		mu.Lock()
		counts[TotalKey] = total
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Compute returns the full statistics. Percentages and the most common type
// are only filled in when at least one evaluation exists.
func (s *StatisticsService) Compute(ctx context.Context) (*Statistics, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Counts:      counts,
		GeneratedAt: s.now(),
	}

	total := counts[TotalKey]
	if total <= 0 {
		return stats, nil
	}

	stats.Percentages = make(map[string]string, len(domain.DiabetesTypes))
	for _, t := range domain.DiabetesTypes {
		stats.Percentages[t] = percent(counts[t], total)
		if counts[t] > stats.MostCommonCount || stats.MostCommonType == "" {
			stats.MostCommonType = t
			stats.MostCommonCount = counts[t]
		}
		if domain.IsCommonType(t) {
			stats.CommonTotal += counts[t]
		}
	}

	stats.RareTotal = total - stats.CommonTotal
	stats.CommonPercentage = percent(stats.CommonTotal, total)
	stats.RarePercentage = percent(stats.RareTotal, total)

	return stats, nil
}

func percent(n, total int64) string {
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
