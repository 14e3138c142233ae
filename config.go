package ibl

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// CaseVelocity describes the edge velocity of a case file, either a power
// law U = UInf * x^m or sampled (x, U) points.
type CaseVelocity struct {
	Type     string
	UInf     float64
	Exponent float64
	X        []float64
	U        []float64
}

// Case is a fully described solve loaded from a configuration file.
type Case struct {
	Method   string
	Fits     string
	Nu       float64
	Rho      float64
	X0       float64
	XEnd     float64
	DeltaM0  float64
	HD0      float64
	HDCrit   float64
	Velocity CaseVelocity
	Output   string
	Stations int
}

// LoadCase reads a case file (any format viper understands) and validates it.
func LoadCase(path string) (*Case, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("output.stations", 101)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("ibl: reading case file: %w", err)
	}
	vx, err := floatSlice(v, "velocity.x")
	if err != nil {
		return nil, err
	}
	vu, err := floatSlice(v, "velocity.u")
	if err != nil {
		return nil, err
	}
	c := &Case{
		Method:   v.GetString("method.name"),
		Fits:     v.GetString("method.fits"),
		Nu:       v.GetFloat64("fluid.nu"),
		Rho:      v.GetFloat64("fluid.rho"),
		X0:       v.GetFloat64("range.start"),
		XEnd:     v.GetFloat64("range.end"),
		DeltaM0:  v.GetFloat64("initial.delta_m"),
		HD0:      v.GetFloat64("initial.h_d"),
		HDCrit:   v.GetFloat64("method.h_d_crit"),
		Output:   v.GetString("output.file"),
		Stations: v.GetInt("output.stations"),
		Velocity: CaseVelocity{
			Type:     v.GetString("velocity.type"),
			UInf:     v.GetFloat64("velocity.u_inf"),
			Exponent: v.GetFloat64("velocity.exponent"),
			X:        vx,
			U:        vu,
		},
	}
	if c.Method == "" {
		return nil, fmt.Errorf("ibl: case file must name a method")
	}
	if c.Stations < 2 {
		return nil, fmt.Errorf("ibl: output.stations must be at least 2, got %d", c.Stations)
	}
	return c, nil
}

// edgeVelocity constructs the velocity profile the case describes.
func (c *Case) edgeVelocity() (*EdgeVelocity, error) {
	switch c.Velocity.Type {
	case "power-law":
		uInf, m := c.Velocity.UInf, c.Velocity.Exponent
		if uInf == 0 {
			return nil, fmt.Errorf("ibl: power-law velocity needs a nonzero u_inf")
		}
		u := func(x float64) float64 { return uInf * math.Pow(x, m) }
		up := func(x float64) float64 {
			if m == 0 {
				return 0
			}
			return m * uInf * math.Pow(x, m-1)
		}
		upp := func(x float64) float64 {
			if m == 0 || m == 1 {
				return 0
			}
			return m * (m - 1) * uInf * math.Pow(x, m-2)
		}
		return NewEdgeVelocityFuncs(u, up, upp)
	case "points":
		return NewEdgeVelocityFromPoints(c.Velocity.X, c.Velocity.U)
	default:
		return nil, fmt.Errorf("ibl: unknown velocity type %q", c.Velocity.Type)
	}
}

// Build constructs and fully configures the method the case describes.
func (c *Case) Build() (Method, error) {
	vel, err := c.edgeVelocity()
	if err != nil {
		return nil, err
	}
	switch c.Method {
	case "thwaites-linear", "thwaites-nonlinear":
		var m *thwaitesMethod
		var method Method
		if c.Method == "thwaites-linear" {
			tm := NewThwaitesLinear()
			m, method = &tm.thwaitesMethod, tm
		} else {
			tm := NewThwaitesNonlinear()
			m, method = &tm.thwaitesMethod, tm
		}
		if c.Fits != "" {
			if err := m.SetDataFits(c.Fits); err != nil {
				return nil, err
			}
		}
		if err := m.SetSolutionParameters(c.X0, c.XEnd, c.DeltaM0, c.Nu); err != nil {
			return nil, err
		}
		m.SetVelocity(vel)
		return method, nil
	case "head":
		hm := NewHeadMethod()
		if c.HDCrit > 0 {
			hm.SetHDCritical(c.HDCrit)
		}
		if err := hm.SetSolutionParameters(c.X0, c.XEnd, c.DeltaM0, c.HD0, c.Nu); err != nil {
			return nil, err
		}
		hm.SetVelocity(vel)
		return hm, nil
	default:
		return nil, fmt.Errorf("ibl: unknown method %q", c.Method)
	}
}

// floatSlice reads a numeric list from the case file; absent keys yield nil.
func floatSlice(v *viper.Viper, key string) ([]float64, error) {
	raw := v.Get(key)
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("ibl: %s must be a list of numbers", key)
	}
	out := make([]float64, len(items))
	for i, it := range items {
		switch n := it.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("ibl: %s[%d] is not a number", key, i)
		}
	}
	return out, nil
}
