package ibl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

func writeCase(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const thwaitesCase = `
method:
  name: thwaites-linear
  fits: White
fluid:
  nu: 1.0e-5
  rho: 1.2
range:
  start: 0.1
  end: 2.0
initial:
  delta_m: 2.0e-4
velocity:
  type: power-law
  u_inf: 10
  exponent: 0
output:
  stations: 21
`

func TestLoadCaseThwaites(t *testing.T) {
	c, err := LoadCase(writeCase(t, thwaitesCase))
	if err != nil {
		t.Fatal(err)
	}
	if c.Method != "thwaites-linear" || c.Fits != "White" {
		t.Fatalf("method %q fits %q", c.Method, c.Fits)
	}
	if c.Nu != 1e-5 || c.Rho != 1.2 || c.X0 != 0.1 || c.XEnd != 2 {
		t.Fatalf("loaded case %+v", c)
	}
	if c.Stations != 21 {
		t.Fatalf("stations = %d, want 21", c.Stations)
	}

	m, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	m.SetLogger(log.NewNopLogger())
	res, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Status != 0 {
		t.Fatalf("case did not complete: %s", res)
	}
	dm, err := m.DeltaM([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if dm[0] <= 0 {
		t.Fatalf("deltaM(1) = %g", dm[0])
	}
}

const headCase = `
method:
  name: head
  h_d_crit: 2.5
fluid:
  nu: 1.5e-5
  rho: 1.2
range:
  start: 0.1
  end: 3.0
initial:
  delta_m: 2.0e-3
  h_d: 1.4
velocity:
  type: points
  x: [0.0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0]
  u: [10.0, 10.0, 10.0, 10.0, 10.0, 10.0, 10.0]
`

func TestLoadCaseHead(t *testing.T) {
	c, err := LoadCase(writeCase(t, headCase))
	if err != nil {
		t.Fatal(err)
	}
	// Station count falls back to the default when omitted.
	if c.Stations != 101 {
		t.Fatalf("stations = %d, want default 101", c.Stations)
	}
	m, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	m.SetLogger(log.NewNopLogger())
	res, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Status != 0 {
		t.Fatalf("case did not complete: %s", res)
	}
	hd, err := m.ShapeD([]float64{2})
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(hd[0], 1.45, 0.2) {
		t.Fatalf("H_d(2) = %g", hd[0])
	}
}

func TestLoadCaseErrors(t *testing.T) {
	if _, err := LoadCase(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
	if _, err := LoadCase(writeCase(t, "fluid:\n  nu: 1.0e-5\n")); err == nil {
		t.Fatal("case without method accepted")
	}
	c, err := LoadCase(writeCase(t, `
method:
  name: integral-matrix
velocity:
  type: power-law
  u_inf: 10
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Build(); err == nil {
		t.Fatal("unknown method accepted")
	}

	c, err = LoadCase(writeCase(t, `
method:
  name: head
velocity:
  type: hodograph
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Build(); err == nil {
		t.Fatal("unknown velocity type accepted")
	}
}
