// Package analyzer runs analysis requests: it fans out to the trend
// collectors, resolves Telegram channels in the deployment's mode, ranks them
// and suggests channel metadata.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trendlens/internal/domain/analysis"
	"trendlens/internal/domain/channel"
	"trendlens/internal/domain/trend"
	"trendlens/internal/metrics"
)

// ChannelSearcher discovers and resolves channels for a keyword
type ChannelSearcher interface {
	Search(ctx context.Context, keyword string) ([]channel.Record, error)
}

// OrchestratorConfig contains configuration for the orchestrator
type OrchestratorConfig struct {
	Mode          analysis.Mode
	DefaultRegion string
}

// Orchestrator implements analysis.Analyzer
type Orchestrator struct {
	config     OrchestratorConfig
	collectors []trend.Collector
	resolver   channel.Resolver
	searcher   ChannelSearcher
	recorders  []analysis.Recorder
	log        zerolog.Logger
	metrics    *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates a new orchestrator. resolver is used in direct mode
// and searcher in search mode; the other may be nil.
func NewOrchestrator(
	config OrchestratorConfig,
	collectors []trend.Collector,
	resolver channel.Resolver,
	searcher ChannelSearcher,
	log zerolog.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	if config.Mode == "" {
		config.Mode = analysis.ModeDirect
	}
	return &Orchestrator{
		config:     config,
		collectors: collectors,
		resolver:   resolver,
		searcher:   searcher,
		log:        log.With().Str("component", "orchestrator").Str("mode", string(config.Mode)).Logger(),
		metrics:    m,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// AddRecorder registers a recorder that receives every completed analysis
func (o *Orchestrator) AddRecorder(r analysis.Recorder) {
	o.recorders = append(o.recorders, r)
}

// Mode returns the mode this orchestrator serves
func (o *Orchestrator) Mode() analysis.Mode {
	return o.config.Mode
}

// Analyze runs one analysis
func (o *Orchestrator) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	mode := o.config.Mode

	subject := req.Subject(mode)
	if subject == "" {
		o.metrics.AnalysisDone(string(mode), "invalid")
		return nil, fmt.Errorf("%w: %s is required", analysis.ErrInvalidRequest, analysis.RequiredField(mode))
	}

	region := req.Region
	if region == "" {
		region = o.config.DefaultRegion
	}

	trends := o.collect(ctx, trend.Query{Region: region, Subject: subject})
	pool := trends.Pool()

	result := &analysis.Result{
		ID:            o.newID(),
		Mode:          mode,
		Subject:       subject,
		GeneratedAt:   o.now().UTC(),
		GoogleTrends:  trends.Google,
		XTrends:       trends.X,
		YouTubeTrends: trends.YouTube,
	}

	switch mode {
	case analysis.ModeSearch:
		records, err := o.searcher.Search(ctx, subject)
		if err != nil {
			o.metrics.AnalysisDone(string(mode), "error")
			return nil, fmt.Errorf("%w: %w", analysis.ErrOrchestration, err)
		}
		result.Channels = Rank(records)
		result.Metadata = GenerateMetadata(subject, pool, true)

	default:
		record, err := o.resolver.ResolveChannel(ctx, subject)
		if err != nil {
			o.log.Info().Err(err).Str("channel", subject).Msg("channel lookup failed")
			result.ChannelErr = err
		} else {
			result.Channel = record
		}
		result.Metadata = GenerateMetadata(metadataSubject(subject), pool, false)
	}

	o.record(ctx, result)
	o.metrics.AnalysisDone(string(mode), "ok")

	return result, nil
}

// collect queries every collector concurrently. A failing collector leaves
// its list empty.
func (o *Orchestrator) collect(ctx context.Context, q trend.Query) trend.Set {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		set trend.Set
	)

	for _, c := range o.collectors {
		wg.Add(1)
		go func(c trend.Collector) {
			defer wg.Done()

			terms, err := c.FetchTrends(ctx, q)
			if err != nil {
				o.log.Warn().Err(err).Str("source", string(c.Source())).Msg("trend source unavailable")
				o.metrics.CollectorFailed(string(c.Source()))
				terms = []string{}
			}

			mu.Lock()
			set.Put(c.Source(), terms)
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return set
}

func (o *Orchestrator) record(ctx context.Context, result *analysis.Result) {
	for _, r := range o.recorders {
		if err := r.Record(ctx, result); err != nil {
			o.log.Error().Err(err).Str("analysis_id", result.ID).Msg("failed to record analysis")
		}
	}
}

// metadataSubject strips link and @ decoration from a direct-mode identifier.
// Links that carry no username give no subject.
func metadataSubject(identifier string) string {
	name, err := channel.ParseIdentifier(identifier)
	if err == nil {
		return name
	}
	if strings.Contains(identifier, "/") {
		return ""
	}
	return identifier
}
