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

package gpputil

import (
	"fmt"
	"io"
	"os"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/estimate"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/metrics"
	"github.com/globalpowerplants/gppd/output"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Build builds the unified database as specified by cfg. The build report
// is written to w.
func Build(cfg *BuildConfig, w io.Writer) error {
	runID := uuid.New().String()

	logFile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("gppd: creating log file: %v", err)
	}
	defer logFile.Close()
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	logger.Out = io.MultiWriter(logFile, os.Stderr)

	hook, closeHook, err := newAuditHook(cfg)
	if err != nil {
		return err
	}
	defer closeHook()
	logger.AddHook(hook)
	log := logger.WithField("run", runID)
	log.WithField("version", gppd.Version).Info("gppd: starting build")

	src, countries, err := loadSources(cfg, log)
	if err != nil {
		return err
	}

	r := reconcile.NewResolver(countries)
	r.MinCapacity = cfg.MinCapacityMW
	r.Log = log
	res, err := r.Resolve(src)
	if err != nil {
		return err
	}
	plants := res.Plants
	report := res.Report

	if cfg.GenerationTotals != "" {
		tr := &estimate.TotalsReader{Countries: countries, Log: log}
		if cfg.FuelThesaurus != "" {
			if tr.Fuels, err = loadFuels(cfg.FuelThesaurus, log); err != nil {
				return err
			}
		}
		totals, err := loadTotals(cfg, tr)
		if err != nil {
			return err
		}
		e := &estimate.Estimator{Year: cfg.EstimationYear, Log: log}
		er := e.Estimate(plants.Plants(), totals)
		plants = estimate.Apply(plants, er)
		report.Estimated = er.Count
	}

	if cfg.WEPPConcordance != "" {
		matches, err := loadWEPP(cfg.WEPPConcordance)
		if err != nil {
			return err
		}
		plants, report.WEPP = reconcile.AssignWEPP(plants, matches, log)
	}

	n := &output.Normalizer{Countries: countries, FirstYear: cfg.FirstYear, LastYear: cfg.LastYear}
	rows := n.Rows(plants)
	if err := writeRows(cfg.OutputFile, n, rows, false); err != nil {
		return err
	}
	if cfg.Dump {
		if err := writeRows(cfg.DumpFile, n, n.DumpRows(res.Dump), true); err != nil {
			return err
		}
	}
	if cfg.DatabaseFile != "" {
		if err := store.WriteFile(cfg.DatabaseFile, plants); err != nil {
			return err
		}
	}
	if err := hook.Flush(); err != nil {
		return err
	}

	if cfg.SummaryFile != "" {
		if err := WriteSummary(cfg.SummaryFile, report.Table(), output.CountrySummary(rows)); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		m, err := metrics.NewRecorder()
		if err != nil {
			return err
		}
		m.SetBuildInfo(gppd.Version, runID)
		m.Observe(report)
		m.ObserveAudit(hook.Counts())
		if err := m.WriteFile(cfg.MetricsFile); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"plants":      plants.Len(),
		"collisions":  report.Collisions,
		"fingerprint": plants.Fingerprint(),
	}).Info("gppd: finished build")
	_, err = report.Tabbed(w)
	return err
}

// newAuditHook creates the audit hook with its optional output files. The
// returned function closes the files.
func newAuditHook(cfg *BuildConfig) (*audit.Hook, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	open := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}
	auditW, err := open(cfg.AuditFile)
	if err != nil {
		return nil, func() {}, fmt.Errorf("gppd: creating audit file: %v", err)
	}
	collisionW, err := open(cfg.CollisionFile)
	if err != nil {
		closeAll()
		return nil, func() {}, fmt.Errorf("gppd: creating collision file: %v", err)
	}
	h, err := audit.NewHook(auditW, collisionW)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}
	return h, closeAll, nil
}

// loadSources loads the country registry and every configured source.
func loadSources(cfg *BuildConfig, log logrus.FieldLogger) (*reconcile.Sources, *thesaurus.Registry, error) {
	countries, err := loadCountries(cfg.CountryInformation, log)
	if err != nil {
		return nil, nil, err
	}
	if err := setPolicies(countries, cfg.CountryPolicy); err != nil {
		return nil, nil, err
	}
	src := new(reconcile.Sources)
	if src.Feeds, err = loadFeeds(cfg.FeedDatabases, countries); err != nil {
		return nil, nil, err
	}
	if src.Curated, err = loadDatabase(cfg.CuratedDatabase); err != nil {
		return nil, nil, err
	}
	if src.Observatory, err = loadDatabase(cfg.ObservatoryDatabase); err != nil {
		return nil, nil, err
	}
	if src.Legacy, err = loadDatabase(cfg.LegacyDatabase); err != nil {
		return nil, nil, err
	}
	if cfg.Concordance != "" {
		if src.Concordance, err = loadConcordance(cfg.Concordance, log); err != nil {
			return nil, nil, err
		}
	}
	if cfg.SolarFile != "" {
		d, err := loadSolar(cfg, countries, log)
		if err != nil {
			return nil, nil, err
		}
		src.Datasets = append(src.Datasets, d)
	}
	if cfg.linkedGeneration() {
		if src.Linked, err = loadLinked(cfg, log); err != nil {
			return nil, nil, err
		}
	}
	return src, countries, nil
}

// writeRows writes output rows to a new CSV file.
func writeRows(path string, n *output.Normalizer, rows []output.Row, dump bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gppd: creating output file: %v", err)
	}
	if err := n.WriteCSV(f, rows, dump); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
