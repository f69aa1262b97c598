package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/software-access-portal/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	serviceInfo *prometheus.GaugeVec
}

// Attach configures telemetry collectors and returns a provider handle.
// The service info gauge carries static service labels so dashboards can
// join request metrics against deployment metadata.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	info := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "uap",
		Name:      "service_info",
		Help:      "Static service metadata labels, always 1",
	}, []string{"service", "environment"})

	info.WithLabelValues(cfg.App.Name, cfg.App.Env).Set(1)

	return &Provider{
		serviceInfo: info,
	}, nil
}

// ServiceInfo exposes the service metadata gauge.
func (p *Provider) ServiceInfo() *prometheus.GaugeVec {
	if p == nil {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{}, nil)
	}
	return p.serviceInfo
}
