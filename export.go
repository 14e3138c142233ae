package ibl

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Station is one solved boundary layer station, ready for export.
type Station struct {
	X      float64
	DeltaM float64
	DeltaD float64
	HD     float64
	TauW   float64
	VTrans float64
}

// ExportConfig configures post-solve output.
type ExportConfig struct {
	Filename string
	AsCSV    bool
	// CSVAppend adds custom columns per station; CSVAppendHdr supplies the
	// matching header fields.
	CSVAppend    func(st Station) []string
	CSVAppendHdr func() []string
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV || c.Filename == ""
}

// StreamStations reads stations from the channel until it closes, writing
// them as CSV rows. It is meant to run concurrently with station generation.
func StreamStations(conf ExportConfig, stations <-chan Station) error {
	if conf.IsUseless() {
		for range stations {
		}
		return nil
	}
	f, err := os.Create(conf.Filename)
	if err != nil {
		return fmt.Errorf("ibl: creating export file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	hdr := []string{"x", "delta_m", "delta_d", "H_d", "tau_w", "V_trans"}
	if conf.CSVAppendHdr != nil {
		hdr = append(hdr, conf.CSVAppendHdr()...)
	}
	if err := w.Write(hdr); err != nil {
		return err
	}
	for st := range stations {
		row := []string{
			fmtG(st.X), fmtG(st.DeltaM), fmtG(st.DeltaD),
			fmtG(st.HD), fmtG(st.TauW), fmtG(st.VTrans),
		}
		if conf.CSVAppend != nil {
			row = append(row, conf.CSVAppend(st)...)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtG(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SampleStations evaluates the solved method at the given positions and
// assembles export rows.
func SampleStations(m Method, xs []float64, rho float64) ([]Station, error) {
	dm, err := m.DeltaM(xs)
	if err != nil {
		return nil, err
	}
	dd, err := m.DeltaD(xs)
	if err != nil {
		return nil, err
	}
	hd, err := m.ShapeD(xs)
	if err != nil {
		return nil, err
	}
	tw, err := m.TauW(xs, rho)
	if err != nil {
		return nil, err
	}
	vt, err := m.TranspirationVelocity(xs)
	if err != nil {
		return nil, err
	}
	out := make([]Station, len(xs))
	for i := range xs {
		out[i] = Station{X: xs[i], DeltaM: dm[i], DeltaD: dd[i], HD: hd[i], TauW: tw[i], VTrans: vt[i]}
	}
	return out, nil
}
