package main

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	ibl "github.com/stakei00/IBL"
)

var caseFile string

var rootCmd = &cobra.Command{
	Use:   "blsolve",
	Short: "Solve an integral boundary layer case and export the stations",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&caseFile, "case", "c", "", "case file describing the solve")
	rootCmd.MarkFlagRequired("case")
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))

	c, err := ibl.LoadCase(caseFile)
	if err != nil {
		return err
	}
	m, err := c.Build()
	if err != nil {
		return err
	}
	m.SetLogger(logger)

	res, err := m.Solve()
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("integration failed: %s", res.Message)
	}
	logger.Log("level", "info", "subsys", "blsolve", "message", res.Message,
		"code", res.Status, "xReached", res.XEnd)

	xs := floats.Span(make([]float64, c.Stations), c.X0, res.XEnd)
	rows, err := ibl.SampleStations(m, xs, c.Rho)
	if err != nil {
		return err
	}
	if c.Output == "" {
		return nil
	}
	ch := make(chan ibl.Station, len(rows))
	for _, st := range rows {
		ch <- st
	}
	close(ch)
	conf := ibl.ExportConfig{Filename: c.Output, AsCSV: true}
	if err := ibl.StreamStations(conf, ch); err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "blsolve", "status", "exported",
		"file", c.Output, "stations", len(rows))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
