// Package service ties the component server client to the resolver and
// records metrics, traces and logs around every operation.
package service

import (
	"context"
	"time"

	"github.com/configproxy/core/internal/client"
	"github.com/configproxy/core/internal/models"
	"github.com/configproxy/core/internal/observability"
	"github.com/configproxy/core/internal/resolver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	OpRootConfigurations = "root_configurations"
	OpFamily             = "family"
	OpIcon               = "icon"
	OpResolve            = "resolve"
)

// FamilyIcon pairs a family id with its representative icon.
type FamilyIcon struct {
	FamilyID string `json:"familyId" yaml:"familyId"`
	Icon     string `json:"icon" yaml:"icon"`
}

type ConfigurationService struct {
	client   client.Client
	metrics  *observability.Metrics
	language string
}

// NewConfigurationService builds the service. defaultLanguage is sent
// upstream when a request does not name one.
func NewConfigurationService(c client.Client, metrics *observability.Metrics, defaultLanguage string) *ConfigurationService {
	return &ConfigurationService{client: c, metrics: metrics, language: defaultLanguage}
}

// RootConfigurations fetches both upstream indexes and flattens them.
func (s *ConfigurationService) RootConfigurations(ctx context.Context, language string) (*models.Nodes, error) {
	ctx, finish := s.begin(ctx, OpRootConfigurations)

	snapshot, err := s.fetch(ctx, language)
	if err != nil {
		finish(err)
		return nil, err
	}
	nodes, err := resolver.RootConfigurations(&snapshot.Configurations, &snapshot.Components)
	if err == nil {
		s.metrics.RootConfigurations.Set(float64(len(nodes.Nodes)))
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("configproxy.root_configurations", len(nodes.Nodes)))
	}
	finish(err)
	return nodes, err
}

// FamilyOf returns the family owning the configuration type id.
func (s *ConfigurationService) FamilyOf(ctx context.Context, id, language string) (*models.ConfigTypeNode, error) {
	ctx, finish := s.begin(ctx, OpFamily, attribute.String("configproxy.configuration_id", id))

	graph, err := s.client.ConfigurationTypes(ctx, s.languageOr(language))
	if err != nil {
		err = errors.Wrap(err, "load configuration types")
		finish(err)
		return nil, err
	}
	family, err := resolver.FamilyOf(id, graph)
	finish(err)
	if err != nil {
		return nil, err
	}
	return &family, nil
}

// FamilyIcon resolves the family of id, then the icon of its first component.
func (s *ConfigurationService) FamilyIcon(ctx context.Context, id, language string) (*FamilyIcon, error) {
	ctx, finish := s.begin(ctx, OpIcon, attribute.String("configproxy.configuration_id", id))

	snapshot, err := s.fetch(ctx, language)
	if err != nil {
		finish(err)
		return nil, err
	}
	family, err := resolver.FamilyOf(id, &snapshot.Configurations)
	if err != nil {
		finish(err)
		return nil, err
	}
	icon, err := resolver.FindIcon(family, &snapshot.Components)
	finish(err)
	if err != nil {
		return nil, err
	}
	return &FamilyIcon{FamilyID: family.ID, Icon: icon}, nil
}

// Resolve flattens a caller supplied snapshot without contacting upstream.
func (s *ConfigurationService) Resolve(ctx context.Context, snapshot *models.Snapshot) (*models.Nodes, error) {
	_, finish := s.begin(ctx, OpResolve)
	nodes, err := resolver.RootConfigurations(&snapshot.Configurations, &snapshot.Components)
	finish(err)
	return nodes, err
}

// fetch loads both upstream indexes concurrently.
func (s *ConfigurationService) fetch(ctx context.Context, language string) (*models.Snapshot, error) {
	language = s.languageOr(language)
	var snapshot models.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		graph, err := s.client.ConfigurationTypes(gctx, language)
		if err != nil {
			return errors.Wrap(err, "load configuration types")
		}
		snapshot.Configurations = *graph
		return nil
	})
	g.Go(func() error {
		index, err := s.client.Components(gctx, language)
		if err != nil {
			return errors.Wrap(err, "load component index")
		}
		snapshot.Components = *index
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *ConfigurationService) languageOr(language string) string {
	if language == "" {
		return s.language
	}
	return language
}

// begin opens a span for operation and returns a function that closes it,
// records metrics and logs the outcome.
func (s *ConfigurationService) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "configuration."+operation, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		defer span.End()
		elapsed := time.Since(start)

		if err == nil {
			s.metrics.RecordOperation(operation, observability.StatusSuccess, elapsed)
			log.Debug().Str("operation", operation).Dur("elapsed", elapsed).Msg("Resolved")
			return
		}

		s.metrics.RecordOperation(operation, observability.StatusError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if re, ok := resolver.AsResolutionError(err); ok {
			s.metrics.RecordResolutionError(re.Kind.String())
			log.Warn().Str("operation", operation).Str("kind", re.Kind.String()).Msg(re.Message)
			return
		}
		log.Error().Err(err).Str("operation", operation).Msg("Resolution failed")
	}
}
