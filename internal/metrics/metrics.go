/*
Copyright © 2018 the GPPD authors.
This file is part of GPPD.

GPPD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GPPD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GPPD.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package metrics exports the summary counts of a database build as
// Prometheus metrics in the text exposition format, for pickup by a
// node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the build metrics.
type Recorder struct {
	registry *prometheus.Registry

	admittedPlants   *prometheus.GaugeVec
	admittedCapacity *prometheus.GaugeVec
	excludedPlants   *prometheus.GaugeVec
	skippedPlants    *prometheus.GaugeVec
	auditEvents      *prometheus.GaugeVec
	collisions       prometheus.Gauge
	consumed         prometheus.Gauge
	linked           prometheus.Gauge
	estimated        prometheus.Gauge
	wepp             prometheus.Gauge
	buildInfo        *prometheus.GaugeVec
}

// NewRecorder returns a recorder with its own registry.
func NewRecorder() (*Recorder, error) {
	m := &Recorder{registry: prometheus.NewRegistry()}
	m.admittedPlants = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_admitted_plants",
		Help: "Number of plants admitted to the database by source",
	}, []string{"source"})
	m.admittedCapacity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_admitted_capacity_mw",
		Help: "Capacity of plants admitted to the database by source",
	}, []string{"source"})
	m.excludedPlants = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_excluded_plants",
		Help: "Number of candidate plants not admitted by reason",
	}, []string{"reason"})
	m.skippedPlants = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_skipped_plants",
		Help: "Number of supplementary dataset plants skipped by country",
	}, []string{"country"})
	m.auditEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_audit_events",
		Help: "Number of audit events by kind",
	}, []string{"kind"})
	m.collisions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gppd_id_collisions",
		Help: "Number of plant identifiers found under more than one country",
	})
	m.consumed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gppd_legacy_locations_used",
		Help: "Number of legacy records whose location was used by a curated plant",
	})
	m.linked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gppd_linked_generation_observations",
		Help: "Number of generation observations added from linked unit data",
	})
	m.estimated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gppd_estimated_plants",
		Help: "Number of plants with estimated generation",
	})
	m.wepp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gppd_wepp_matches",
		Help: "Number of plants matched to WEPP identifiers",
	})
	m.buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gppd_build_info",
		Help: "Build run information; always 1",
	}, []string{"version", "run_id"})

	for _, c := range []prometheus.Collector{
		m.admittedPlants, m.admittedCapacity, m.excludedPlants, m.skippedPlants,
		m.auditEvents, m.collisions, m.consumed, m.linked, m.estimated, m.wepp,
		m.buildInfo,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: %v", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the metrics.
func (m *Recorder) Registry() *prometheus.Registry { return m.registry }

// SetBuildInfo records the version and run identifier of the build.
func (m *Recorder) SetBuildInfo(version, runID string) {
	m.buildInfo.WithLabelValues(version, runID).Set(1)
}

// Observe records the counts in a build report.
func (m *Recorder) Observe(r *reconcile.Report) {
	for source, t := range r.Admitted {
		m.admittedPlants.WithLabelValues(source).Set(float64(t.Count))
		m.admittedCapacity.WithLabelValues(source).Set(t.Capacity)
	}
	for reason, t := range r.Excluded {
		m.excludedPlants.WithLabelValues(string(reason)).Set(float64(t.Count))
	}
	for country, t := range r.Skipped {
		m.skippedPlants.WithLabelValues(country).Set(float64(t.Count))
	}
	m.collisions.Set(float64(r.Collisions))
	m.consumed.Set(float64(r.Consumed))
	m.linked.Set(float64(r.Linked))
	m.estimated.Set(float64(r.Estimated))
	m.wepp.Set(float64(r.WEPP))
}

// ObserveAudit records the number of audit events of each kind.
func (m *Recorder) ObserveAudit(counts map[audit.Kind]int) {
	for k, n := range counts {
		m.auditEvents.WithLabelValues(string(k)).Set(float64(n))
	}
}

// WriteFile writes the metrics to path in the text exposition format.
func (m *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: %v", err)
	}
	return nil
}
