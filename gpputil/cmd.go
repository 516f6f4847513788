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

	"github.com/globalpowerplants/gppd"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to GPPD.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CountryInformation",
			usage: `
              CountryInformation is the path to the CSV table of canonical
              countries, their ISO codes, their names in the source
              databases, and their source policy flags.`,
			defaultVal: "${GPPD_DATA}/resources/country_information.csv",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags(), aggregateCmd.Flags()},
		},
		{
			name: "FuelThesaurus",
			usage: `
              FuelThesaurus is the path to the YAML fuel thesaurus, or to a
              directory of per-fuel alias lists.`,
			defaultVal: "${GPPD_DATA}/resources/fuel_type_thesaurus",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags(), aggregateCmd.Flags()},
		},
		{
			name: "HeaderThesaurus",
			usage: `
              HeaderThesaurus is the path to a CSV table mapping canonical
              column names to the headers used by source tables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Input",
			usage: `
              Aggregate.Input is the raw unit table to aggregate, in CSV or
              xlsx format.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Sheet",
			usage: `
              Aggregate.Sheet is the sheet to read when Aggregate.Input is a
              spreadsheet. The default is the first sheet.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Code",
			usage: `
              Aggregate.Code is the identifier prefix of the plants, for
              example the ISO code of the country of a national feed.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Source",
			usage: `
              Aggregate.Source is the default source of the plants.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.URL",
			usage: `
              Aggregate.URL is the default source URL of the plants.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.GroupByName",
			usage: `
              Aggregate.GroupByName specifies whether records without a plant
              key are grouped by plant name.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.CapacityYear",
			usage: `
              Aggregate.CapacityYear is the default year of the capacity data.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.DataYear",
			usage: `
              Aggregate.DataYear is the latest plausible commissioning year.
              Later commissioning years are logged as suspect.`,
			defaultVal: 2019,
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Output",
			usage: `
              Aggregate.Output is the path of the database file to write.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Concordance",
			usage: `
              Concordance is the path to the CSV table linking curated plants
              to the observatory and legacy databases.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "CountryPolicy",
			usage: `
              CountryPolicy overrides the source policy flags of countries,
              for example {"Chile":"automated"}. The flags are automated,
              use_observatory, and curated_built_in.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "FeedDatabases",
			usage: `
              FeedDatabases are the automated per-country databases. Each
              must be named with the ISO code of its country.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "CuratedDatabase",
			usage: `
              CuratedDatabase is the manually-curated multi-country database.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "ObservatoryDatabase",
			usage: `
              ObservatoryDatabase is the global observatory database.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LegacyDatabase",
			usage: `
              LegacyDatabase is the legacy global database, which is only used
              to locate curated plants.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "MinCapacityMW",
			usage: `
              MinCapacityMW is the smallest plant capacity admitted to the
              database.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SolarFile",
			usage: `
              SolarFile is the CSV table of the solar dataset.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SolarExclusion",
			usage: `
              SolarExclusion is a CSV table listing solar plants that are
              never imported.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SolarTerritories",
			usage: `
              SolarTerritories is a TOML file assigning the territory codes of
              the solar dataset to countries.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SolarSkipCountries",
			usage: `
              SolarSkipCountries lists countries whose solar plants are not
              imported from the solar dataset.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SolarWhitelist",
			usage: `
              SolarWhitelist lists territory codes that are imported even when
              their country is skipped.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LinkedGeneration.Units",
			usage: `
              LinkedGeneration.Units is the CSV table linking plants to the
              units of an external generation dataset.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LinkedGeneration.Data",
			usage: `
              LinkedGeneration.Data is the CSV table of annual unit generation.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LinkedGeneration.Blacklist",
			usage: `
              LinkedGeneration.Blacklist is a CSV table with a unit_id column
              listing units whose data are unreliable. Plants with a listed
              unit never receive linked generation.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LinkedGeneration.Source",
			usage: `
              LinkedGeneration.Source is the source recorded with linked
              generation values.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LinkedGeneration.Threshold",
			usage: `
              LinkedGeneration.Threshold is the smallest time coverage that
              every unit of a plant must have for its generation to be used.`,
			defaultVal: 0.95,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "GenerationTotals",
			usage: `
              GenerationTotals is the table of national generation by fuel,
              in CSV or xlsx format. Generation is only estimated when it is
              set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "GenerationSheet",
			usage: `
              GenerationSheet is the sheet to read when GenerationTotals is a
              spreadsheet.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "EstimationYear",
			usage: `
              EstimationYear is the year for which generation is estimated.`,
			defaultVal: 2017,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "WEPPConcordance",
			usage: `
              WEPPConcordance is the CSV table of matches between plants and
              WEPP location identifiers.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the output CSV table.`,
			shorthand:  "o",
			defaultVal: "global_power_plant_database.csv",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "DatabaseFile",
			usage: `
              DatabaseFile, if set, is the path where the unified database is
              saved.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Dump",
			usage: `
              Dump specifies whether to write every candidate record with
              its admission outcome.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "DumpFile",
			usage: `
              DumpFile is the path of the dump table. The default is the
              OutputFile path with a _dump suffix.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "AuditFile",
			usage: `
              AuditFile, if set, is the path of the CSV audit log.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "CollisionFile",
			usage: `
              CollisionFile, if set, is the path of the CSV table of plant
              identifiers found under two countries.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "SummaryFile",
			usage: `
              SummaryFile, if set, is the path of an xlsx workbook summarizing
              the build by source and by country.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile, if set, is the path where build metrics are written
              in the Prometheus text format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path of the build log. The default is the
              OutputFile path with a .log extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "FirstYear",
			usage: `
              FirstYear is the first year of the generation columns.`,
			defaultVal: 2013,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "LastYear",
			usage: `
              LastYear is the last year of the generation columns.`,
			defaultVal: 2019,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GPPD")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(aggregateCmd)
	Root.AddCommand(buildCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gppd: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gppd",
	Short: "Builds the Global Power Plant Database.",
	Long: `GPPD builds a unified database of power plants from national feeds, a
manually-curated table, and global reference databases. Use the subcommands
specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GPPD_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GPPD.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GPPD v%s\n", gppd.Version)
	},
	DisableAutoGenTag: true,
}

// aggregateCmd converts one raw unit table into a source database.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate a raw unit table into a source database.",
	Long: `aggregate reads a table of generating units, standardizes their
fuels and countries, merges the units of each plant, and saves the
resulting plants as a source database for the build command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := AggregateConfigFrom(Cfg)
		if err != nil {
			return err
		}
		return Aggregate(cfg, cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

// buildCmd builds the unified database.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the unified database.",
	Long: `build merges the source databases into the unified database,
estimates generation for plants that do not report it, and writes the
output table together with a report of the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := BuildConfigFrom(Cfg)
		if err != nil {
			return err
		}
		return Build(cfg, cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
