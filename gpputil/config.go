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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// BuildConfig holds the configuration of a database build.
type BuildConfig struct {
	// Resources. Missing resources are fatal.
	CountryInformation, FuelThesaurus, Concordance string

	// CountryPolicy overrides the policy flags of the named countries,
	// for example {"Chile": "automated"}.
	CountryPolicy map[string]string

	// Source databases, as written by the aggregate command.
	FeedDatabases                                        []string
	CuratedDatabase, ObservatoryDatabase, LegacyDatabase string
	MinCapacityMW                                        float64

	// Solar dataset.
	SolarFile, SolarExclusion, SolarTerritories string
	SolarSkipCountries, SolarWhitelist          []string

	// Linked unit generation.
	LinkedUnits, LinkedData, LinkedBlacklist, LinkedSource string
	LinkedThreshold                                        float64

	// Generation estimation.
	GenerationTotals, GenerationSheet string
	EstimationYear                    int

	WEPPConcordance string

	// Outputs. Only OutputFile is required.
	OutputFile, DatabaseFile, DumpFile string
	Dump                               bool
	AuditFile, CollisionFile           string
	SummaryFile, MetricsFile, LogFile  string
	FirstYear, LastYear                int
}

// BuildConfigFrom reads a build configuration from cfg. Environment
// variables in file paths are expanded.
func BuildConfigFrom(cfg *viper.Viper) (*BuildConfig, error) {
	c := &BuildConfig{
		CountryInformation:  os.ExpandEnv(cfg.GetString("CountryInformation")),
		FuelThesaurus:       os.ExpandEnv(cfg.GetString("FuelThesaurus")),
		Concordance:         os.ExpandEnv(cfg.GetString("Concordance")),
		FeedDatabases:       expandStringSlice(cfg.GetStringSlice("FeedDatabases")),
		CuratedDatabase:     os.ExpandEnv(cfg.GetString("CuratedDatabase")),
		ObservatoryDatabase: os.ExpandEnv(cfg.GetString("ObservatoryDatabase")),
		LegacyDatabase:      os.ExpandEnv(cfg.GetString("LegacyDatabase")),
		MinCapacityMW:       cfg.GetFloat64("MinCapacityMW"),
		SolarFile:           os.ExpandEnv(cfg.GetString("SolarFile")),
		SolarExclusion:      os.ExpandEnv(cfg.GetString("SolarExclusion")),
		SolarTerritories:    os.ExpandEnv(cfg.GetString("SolarTerritories")),
		SolarSkipCountries:  cfg.GetStringSlice("SolarSkipCountries"),
		SolarWhitelist:      cfg.GetStringSlice("SolarWhitelist"),
		LinkedUnits:         os.ExpandEnv(cfg.GetString("LinkedGeneration.Units")),
		LinkedData:          os.ExpandEnv(cfg.GetString("LinkedGeneration.Data")),
		LinkedBlacklist:     os.ExpandEnv(cfg.GetString("LinkedGeneration.Blacklist")),
		LinkedSource:        cfg.GetString("LinkedGeneration.Source"),
		LinkedThreshold:     cfg.GetFloat64("LinkedGeneration.Threshold"),
		GenerationTotals:    os.ExpandEnv(cfg.GetString("GenerationTotals")),
		GenerationSheet:     cfg.GetString("GenerationSheet"),
		EstimationYear:      cfg.GetInt("EstimationYear"),
		WEPPConcordance:     os.ExpandEnv(cfg.GetString("WEPPConcordance")),
		DatabaseFile:        os.ExpandEnv(cfg.GetString("DatabaseFile")),
		Dump:                cfg.GetBool("Dump"),
		AuditFile:           os.ExpandEnv(cfg.GetString("AuditFile")),
		CollisionFile:       os.ExpandEnv(cfg.GetString("CollisionFile")),
		SummaryFile:         os.ExpandEnv(cfg.GetString("SummaryFile")),
		MetricsFile:         os.ExpandEnv(cfg.GetString("MetricsFile")),
		FirstYear:           cfg.GetInt("FirstYear"),
		LastYear:            cfg.GetInt("LastYear"),
	}
	var err error
	if c.CountryPolicy, err = GetStringMapString("CountryPolicy", cfg); err != nil {
		return nil, err
	}
	if c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	c.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), c.OutputFile)
	if c.Dump {
		c.DumpFile = checkDumpFile(os.ExpandEnv(cfg.GetString("DumpFile")), c.OutputFile)
	}
	if c.CountryInformation == "" {
		return nil, fmt.Errorf("gppd: the CountryInformation configuration variable is required")
	}
	if c.CuratedDatabase != "" && c.Concordance == "" {
		return nil, fmt.Errorf("gppd: the Concordance configuration variable is required with CuratedDatabase")
	}
	if c.FirstYear > c.LastYear {
		return nil, fmt.Errorf("gppd: FirstYear=%d is after LastYear=%d", c.FirstYear, c.LastYear)
	}
	if c.LinkedThreshold < 0 || c.LinkedThreshold > 1 {
		return nil, fmt.Errorf("gppd: LinkedGeneration.Threshold=%g but should be between 0 and 1", c.LinkedThreshold)
	}
	return c, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="global_power_plant_database.csv")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gppd: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// checkDumpFile fills in a default value for the dump file path if one
// isn't specified.
func checkDumpFile(dumpFile, outputFile string) string {
	if dumpFile == "" {
		ext := filepath.Ext(outputFile)
		dumpFile = strings.TrimSuffix(outputFile, ext) + "_dump" + ext
	}
	return dumpFile
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("gppd: reading %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("gppd: invalid type for %s: %#v", varName, i)
	}
}

// linkedGeneration reports whether the configuration includes linked unit
// generation data.
func (c *BuildConfig) linkedGeneration() bool {
	return c.LinkedUnits != "" && c.LinkedData != ""
}

// threshold returns the coverage threshold of linked generation.
func (c *BuildConfig) threshold() float64 {
	if c.LinkedThreshold == 0 {
		return reconcile.DefaultCoverage
	}
	return c.LinkedThreshold
}
