package detect

import (
	"context"
	"testing"

	"github.com/katalvlaran/cvc/config"
	"github.com/katalvlaran/cvc/netlist"
	"github.com/katalvlaran/cvc/propagate"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	return l
}

func runAll(t *testing.T, c *netlist.Circuit, cfg config.Config) *propagate.Engine {
	t.Helper()
	c.BuildAdjacency()
	e := propagate.NewEngine(c, cfg, quietLogger())
	ctx := context.Background()
	require.NoError(t, e.PropagateMinMax(ctx, netlist.DirMin))
	require.NoError(t, e.PropagateMinMax(ctx, netlist.DirMax))
	require.NoError(t, e.PropagateSim(ctx))

	return e
}

// pinNet adds a net pinned to v for every direction in kinds, so
// single-device predicate tests can dial in exact terminal voltages
// without building a driving network around each device.
func pinNet(c *netlist.Circuit, name string, v netlist.Voltage, kinds netlist.PowerKind) netlist.NetID {
	n := c.AddNet(name, netlist.InvalidInstance)
	pw := c.AddPower(netlist.Power{Signal: name, Kinds: kinds, Min: v, Sim: v, Max: v})
	c.Nets[n].PowerRef = pw

	return n
}

const allDirs = netlist.PowerMin | netlist.PowerSim | netlist.PowerMax

func TestOvervoltageSpreadsByKind(t *testing.T) {
	cases := []struct {
		name                       string
		src, gate, drn, bulk       netlist.Voltage
		vgsTol, vdsTol             netlist.Voltage
		vbsTol, vbgTol             netlist.Voltage
		wantKind                   Kind
		wantFired                  bool
	}{
		{"all spreads within tolerance", 0, 1200, 0, 0, 1200, 1200, 1200, 1200, 0, false},
		{"vgs over tolerance", 0, 1800, 0, 0, 1200, 2000, 2000, 2000, KindVgs, true},
		{"vds over tolerance", 0, 0, 1800, 0, 2000, 1200, 2000, 2000, KindVds, true},
		{"vbs over tolerance", 0, 0, 0, 1800, 2000, 2000, 1200, 2000, KindVbs, true},
		{"vbg over tolerance", 1800, 0, 1800, 1800, 2000, 2000, 2000, 1200, KindVbg, true},
		{"spread exactly at tolerance passes", 0, 1200, 0, 0, 1200, 2000, 2000, 2000, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := netlist.NewCircuit("ov")
			s := pinNet(c, "S", tc.src, allDirs)
			g := pinNet(c, "G", tc.gate, allDirs)
			dr := pinNet(c, "D", tc.drn, allDirs)
			b := pinNet(c, "B", tc.bulk, allDirs)
			nmos := c.AddModel(netlist.Model{
				Name: "nmos", Tag: netlist.TagNMOS, Vth: 300,
				VgsTol: tc.vgsTol, VdsTol: tc.vdsTol, VbsTol: tc.vbsTol, VbgTol: tc.vbgTol,
			})
			d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{s, g, dr, b}, netlist.Params{}, "N1")

			e := runAll(t, c, config.Default())
			f, fired := Overvoltage(c, e, config.Default(), d)
			require.Equal(t, tc.wantFired, fired)
			if fired {
				assert.Equal(t, tc.wantKind, f.Kind)
				assert.False(t, f.LogicOK, "simulated values breach directly, not just the leak envelope")
			}
		})
	}
}

func TestSourceBulkBiasByPolarity(t *testing.T) {
	cases := []struct {
		name            string
		tag             netlist.ModelTag
		src, drn, bulk  netlist.Voltage
		bulkKinds       netlist.PowerKind
		soi             bool
		wantFired       bool
	}{
		{"nmos bulk at source min", netlist.TagNMOS, 0, 1200, 0, allDirs, false, false},
		{"nmos bulk above source min", netlist.TagNMOS, 0, 1200, 600, allDirs, false, true},
		{"pmos bulk at source max", netlist.TagPMOS, 1200, 0, 1200, allDirs, false, false},
		{"pmos bulk below source max", netlist.TagPMOS, 1200, 0, 600, allDirs, false, true},
		{"hi-z bulk family is exempt", netlist.TagNMOS, 0, 1200, 600, allDirs | netlist.PowerHiZ, false, false},
		{"soi mode skips bulk checks", netlist.TagNMOS, 0, 1200, 600, allDirs, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := netlist.NewCircuit("sb")
			s := pinNet(c, "S", tc.src, allDirs)
			g := pinNet(c, "G", 0, allDirs)
			dr := pinNet(c, "D", tc.drn, allDirs)
			b := pinNet(c, "B", tc.bulk, tc.bulkKinds)
			vth := netlist.Voltage(300)
			if tc.tag == netlist.TagPMOS {
				vth = -300
			}
			m := c.AddModel(netlist.Model{
				Name: "m", Tag: tc.tag, Vth: vth,
				VgsTol: 2000, VdsTol: 2000, VbsTol: 2000, VbgTol: 2000,
			})
			d := c.AddDevice(netlist.InvalidInstance, m, [4]netlist.NetID{s, g, dr, b}, netlist.Params{}, "M1")

			cfg := config.Default()
			cfg.SOI = tc.soi
			e := runAll(t, c, cfg)
			f, fired := SourceBulk(c, e, cfg, d)
			require.Equal(t, tc.wantFired, fired)
			if fired {
				assert.Equal(t, KindSourceBulk, f.Kind)
			}
		})
	}
}

func TestPossibleLeakEstimates(t *testing.T) {
	cases := []struct {
		name       string
		srcKinds   netlist.PowerKind
		drnKinds   netlist.PowerKind
		channelR   float64
		wantFired  bool
	}{
		{"sim leak over limit", allDirs, allDirs, 1000, true},
		{"sim leak under limit", allDirs, allDirs, 1e7, false},
		{"envelope leak when one sim unknown", allDirs, netlist.PowerMin | netlist.PowerMax, 1000, true},
		{"zero channel resistance skipped", allDirs, allDirs, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := netlist.NewCircuit("leak")
			s := pinNet(c, "S", 0, tc.srcKinds)
			g := pinNet(c, "G", 0, allDirs)
			dr := pinNet(c, "D", 1200, tc.drnKinds)
			expr, err := netlist.CompileResistanceExpr("R")
			require.NoError(t, err)
			nmos := c.AddModel(netlist.Model{
				Name: "nmos", Tag: netlist.TagNMOS, Vth: 300, ResistanceExpr: expr,
				VgsTol: 2000, VdsTol: 2000, VbsTol: 2000, VbgTol: 2000,
			})
			d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{s, g, dr, s}, netlist.Params{R: tc.channelR}, "N1")

			e := runAll(t, c, config.Default())
			f, fired := PossibleLeak(c, e, config.Default(), d)
			require.Equal(t, tc.wantFired, fired)
			if fired {
				assert.Equal(t, KindPossibleLeak, f.Kind)
			}
		})
	}
}

func TestLDDSourceDirectionCheck(t *testing.T) {
	cases := []struct {
		name           string
		tag            netlist.ModelTag
		gate, src, drn netlist.Voltage
		wantFired      bool
	}{
		{"lddn off with source above drain", netlist.TagLDDN, 0, 600, 0, true},
		{"lddn conducting gate", netlist.TagLDDN, 1200, 600, 0, false},
		{"lddn right direction", netlist.TagLDDN, 0, 0, 600, false},
		{"plain nmos is not checked", netlist.TagNMOS, 0, 600, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := netlist.NewCircuit("ldd")
			s := pinNet(c, "S", tc.src, allDirs)
			g := pinNet(c, "G", tc.gate, allDirs)
			dr := pinNet(c, "D", tc.drn, allDirs)
			m := c.AddModel(netlist.Model{
				Name: "m", Tag: tc.tag, Vth: 300,
				VgsTol: 2000, VdsTol: 2000, VbsTol: 2000, VbgTol: 2000,
			})
			d := c.AddDevice(netlist.InvalidInstance, m, [4]netlist.NetID{s, g, dr, s}, netlist.Params{}, "L1")

			e := runAll(t, c, config.Default())
			f, fired := LDDSource(c, e, config.Default(), d)
			require.Equal(t, tc.wantFired, fired)
			if fired {
				assert.Equal(t, KindLDDSource, f.Kind)
			}
		})
	}
}

// TestOvervoltageSupplyPMOSReportedOnce: a PMOS bulked to the core
// rail but sourced from a higher overvoltage supply. The full battery
// must report exactly two findings on the device — one Vbs spread and
// one source-bulk bias — with neither duplicated.
func TestOvervoltageSupplyPMOSReportedOnce(t *testing.T) {
	c := netlist.NewCircuit("ovsupply")
	vdd := pinNet(c, "VDD", 1200, allDirs)
	hv := pinNet(c, "VDDH", 1800, allDirs)
	pmos := c.AddModel(netlist.Model{
		Name: "pmos", Tag: netlist.TagPMOS, Vth: -300,
		VgsTol: 2000, VdsTol: 2000, VbsTol: 300, VbgTol: 2000,
	})
	// source=VDDH, gate=VDD, drain=VDD, bulk=VDD.
	d := c.AddDevice(netlist.InvalidInstance, pmos, [4]netlist.NetID{hv, vdd, vdd, vdd}, netlist.Params{}, "P1")

	e := runAll(t, c, config.Default())
	var findings []*Finding
	for _, det := range Detectors {
		if f, ok := det(c, e, config.Default(), d); ok {
			findings = append(findings, f)
		}
	}

	require.Len(t, findings, 2)
	kinds := map[Kind]int{}
	for _, f := range findings {
		kinds[f.Kind]++
	}
	assert.Equal(t, 1, kinds[KindVbs], "bulk 600mV below the overvoltage source breaches VbsTol=300")
	assert.Equal(t, 1, kinds[KindSourceBulk], "pmos bulk not dominated by the source/drain max")
}

func TestForwardDiodeFires(t *testing.T) {
	c := netlist.NewCircuit("diode")
	hi := c.AddNet("HI", netlist.InvalidInstance)
	lo := c.AddNet("LO", netlist.InvalidInstance)
	pHi := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	pLo := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 0, Max: 0})
	c.Nets[hi].PowerRef = pHi
	c.Nets[lo].PowerRef = pLo

	diode := c.AddModel(netlist.Model{Name: "d", Tag: netlist.TagDiode})
	d := c.AddDevice(netlist.InvalidInstance, diode, [4]netlist.NetID{hi, netlist.InvalidNet, lo, netlist.InvalidNet}, netlist.Params{}, "D1")

	e := runAll(t, c, config.Default())
	f, fired := ForwardDiode(c, e, config.Default(), d)
	require.True(t, fired)
	assert.Equal(t, KindForwardDiode, f.Kind)
}

func TestForwardDiodeDoesNotFireWhenSameFinalNet(t *testing.T) {
	c := netlist.NewCircuit("diode-ok")
	a := c.AddNet("A", netlist.InvalidInstance)
	diode := c.AddModel(netlist.Model{Name: "d", Tag: netlist.TagDiode})
	d := c.AddDevice(netlist.InvalidInstance, diode, [4]netlist.NetID{a, netlist.InvalidNet, a, netlist.InvalidNet}, netlist.Params{}, "D1")

	e := runAll(t, c, config.Default())
	_, fired := ForwardDiode(c, e, config.Default(), d)
	assert.False(t, fired)
}

// TestGateSourceFiresOnPassGateThresholdLoss builds the classic
// pass-gate signature: an NMOS gated by a mid-rail net (900mV, above
// Vth=300 over a grounded source) bridging straight to an
// independently-driven VDD drain (1200mV) it can never fully pass.
// The gate clears its threshold bound against the source side but
// never reaches the drain side's envelope, so the opposite terminal
// still reaches past where the gate sits.
func TestGateSourceFiresOnPassGateThresholdLoss(t *testing.T) {
	c := netlist.NewCircuit("gs")
	gnd := c.AddNet("GND", netlist.InvalidInstance)
	gmid := c.AddNet("GMID", netlist.InvalidInstance)
	vdd := c.AddNet("VDD", netlist.InvalidInstance)
	pGnd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 0, Max: 0})
	pGmid := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 900, Max: 900})
	pVdd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	c.Nets[gnd].PowerRef = pGnd
	c.Nets[gmid].PowerRef = pGmid
	c.Nets[vdd].PowerRef = pVdd

	nmos := c.AddModel(netlist.Model{Name: "n", Tag: netlist.TagNMOS, Vth: 300})
	d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{gnd, gmid, vdd, gnd}, netlist.Params{}, "N1")

	e := runAll(t, c, config.Default())
	f, fired := GateSource(c, e, config.Default(), d)
	require.True(t, fired)
	assert.Equal(t, KindGateSource, f.Kind)
}

// TestGateSourceDoesNotFireOnOrdinaryConductingPullDown: an NMOS with
// source=GND, gate=VDD, drain=VDD, Vth=300 is
// an ordinary fully-conducting pull-down, not a threshold-loss error.
func TestGateSourceDoesNotFireOnOrdinaryConductingPullDown(t *testing.T) {
	c := netlist.NewCircuit("gs-ok")
	gnd := c.AddNet("GND", netlist.InvalidInstance)
	vdd := c.AddNet("VDD", netlist.InvalidInstance)
	drn := c.AddNet("OUT_HIGH", netlist.InvalidInstance) // a second net driven to the same VDD voltage
	pGnd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 0, Max: 0})
	pVdd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	pOutHigh := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	c.Nets[gnd].PowerRef = pGnd
	c.Nets[vdd].PowerRef = pVdd
	c.Nets[drn].PowerRef = pOutHigh

	nmos := c.AddModel(netlist.Model{Name: "n", Tag: netlist.TagNMOS, Vth: 300})
	d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{gnd, vdd, drn, gnd}, netlist.Params{}, "N1")

	e := runAll(t, c, config.Default())
	_, fired := GateSource(c, e, config.Default(), d)
	assert.False(t, fired)
}

// TestGateSourceDoesNotFireOnFloatingSelfDrivenDrain covers a pass
// transistor whose drain has no external driver: the device's own
// conduction pulls the drain to the source rail on both passes, so no
// independent envelope ever reaches past the gate.
func TestGateSourceDoesNotFireOnFloatingSelfDrivenDrain(t *testing.T) {
	c := netlist.NewCircuit("gs-float")
	gnd := c.AddNet("GND", netlist.InvalidInstance)
	vdd := c.AddNet("VDD", netlist.InvalidInstance)
	drn := c.AddNet("DRN", netlist.InvalidInstance)
	pGnd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 0, Max: 0})
	pVdd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax, Min: 1200, Max: 1200})
	c.Nets[gnd].PowerRef = pGnd
	c.Nets[vdd].PowerRef = pVdd

	nmos := c.AddModel(netlist.Model{Name: "n", Tag: netlist.TagNMOS, Vth: 300})
	d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{gnd, vdd, drn, gnd}, netlist.Params{}, "N1")

	e := runAll(t, c, config.Default())
	_, fired := GateSource(c, e, config.Default(), d)
	assert.False(t, fired)
}

func TestFloatingInputFiresOnTrulyFloatingGate(t *testing.T) {
	c := netlist.NewCircuit("float")
	gnd := c.AddNet("GND", netlist.InvalidInstance)
	floating := c.AddNet("FLOAT", netlist.InvalidInstance)
	drn := c.AddNet("DRN", netlist.InvalidInstance)
	pGnd := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax | netlist.PowerSim, Min: 0, Max: 0, Sim: 0})
	c.Nets[gnd].PowerRef = pGnd

	nmos := c.AddModel(netlist.Model{Name: "n", Tag: netlist.TagNMOS, Vth: 300})
	d := c.AddDevice(netlist.InvalidInstance, nmos, [4]netlist.NetID{gnd, floating, drn, gnd}, netlist.Params{}, "N1")

	e := runAll(t, c, config.Default())
	f, fired := FloatingInput(c, e, config.Config{}, d)
	require.True(t, fired)
	assert.Equal(t, KindFloatingInput, f.Kind)
}

func TestExpectedValueFiresOnMismatch(t *testing.T) {
	c := netlist.NewCircuit("expect")
	net := c.AddNet("N", netlist.InvalidInstance)
	pw := c.AddPower(netlist.Power{Kinds: netlist.PowerMin | netlist.PowerMax | netlist.PowerExpectedMin})
	c.Powers[pw].Min = 0
	c.Powers[pw].Max = 0
	c.Powers[pw].Expected.Min = 500
	c.Nets[net].PowerRef = pw
	c.BuildAdjacency()

	e := propagate.NewEngine(c, config.Default(), quietLogger())
	findings := ExpectedValue(c, e, net)
	require.Len(t, findings, 1)
	assert.Equal(t, KindExpectedValue, findings[0].Kind)
}

func TestThrottleSuppressesAfterLimit(t *testing.T) {
	th := NewThrottle(2)
	f := &Finding{Kind: KindPossibleLeak, Instance: 1}
	assert.True(t, th.Record(f))
	assert.True(t, th.Record(f))
	assert.False(t, th.Record(f))
	assert.EqualValues(t, 3, th.Total(KindPossibleLeak))
}
