// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	registry     *prometheus.Registry
	responseTime *prometheus.HistogramVec
	dependencies *prometheus.GaugeVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

// Registry exposes the private registry the collectors live on.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the collected metrics in the node exporter textfile format.
func (m *Monitor) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Monitor) SetResponseTimeMetric(labels map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	o, err := m.responseTime.GetMetricWith(m.withService(labels))
	if err != nil {
		m.logger.Debugf("response time metric rejected labels %v: %v", labels, err)
		return err
	}
	o.Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(labels map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not instantiated")
	}

	g, err := m.dependencies.GetMetricWith(m.withService(labels))
	if err != nil {
		m.logger.Debugf("dependency metric rejected labels %v: %v", labels, err)
		return err
	}
	g.Set(value)

	return nil
}

func (m *Monitor) withService(labels map[string]string) prometheus.Labels {
	l := prometheus.Labels{"service": m.service}
	for k, v := range labels {
		l[k] = v
	}
	return l
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "http_response_time_seconds",
		},
		[]string{"route", "status", "service"},
	)
	m.registry.MustRegister(m.responseTime)
}

func (m *Monitor) registerGauges() {
	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency_available",
		},
		[]string{"component", "service"},
	)
	m.registry.MustRegister(m.dependencies)
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger
	m.registry = prometheus.NewRegistry()

	m.registerHistograms()
	m.registerGauges()

	return m
}
