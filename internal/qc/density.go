package qc

import (
	"math"
	"sort"

	"github.com/oceanstream/argo-etl-service/internal/domain"
)

// Density computes in-situ seawater density (kg/m³) from temperature (°C,
// IPTS-68), practical salinity (PSU) and pressure (dbar) using the EOS-80
// equation of state (UNESCO technical paper 44, 1983). The coefficient
// tables below are the published constants; unit tests pin the function to
// the UNESCO check values.
func Density(t, s, presDbar float64) float64 {
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	t5 := t4 * t
	s15 := s * sqrtAbs(s)

	// Density of pure water at atmospheric pressure.
	rhoW := 999.842594 +
		6.793952e-2*t -
		9.095290e-3*t2 +
		1.001685e-4*t3 -
		1.120083e-6*t4 +
		6.536332e-9*t5

	// Salinity contribution at atmospheric pressure.
	a := 8.24493e-1 -
		4.0899e-3*t +
		7.6438e-5*t2 -
		8.2467e-7*t3 +
		5.3875e-9*t4
	b := -5.72466e-3 +
		1.0227e-4*t -
		1.6546e-6*t2
	const c = 4.8314e-4

	rho0 := rhoW + a*s + b*s15 + c*s*s

	pBar := presDbar / 10 // EOS-80 pressure term is in bars
	if pBar == 0 {
		return rho0
	}

	return rho0 / (1 - pBar/secantBulkModulus(t, s, pBar))
}

// secantBulkModulus computes K(S,T,p), the EOS-80 secant bulk modulus, with
// pressure in bars.
func secantBulkModulus(t, s, pBar float64) float64 {
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	s15 := s * sqrtAbs(s)

	kw := 19652.21 +
		148.4206*t -
		2.327105*t2 +
		1.360477e-2*t3 -
		5.155288e-5*t4

	k0 := kw +
		s*(54.6746-0.603459*t+1.09987e-2*t2-6.1670e-5*t3) +
		s15*(7.944e-2+1.6483e-2*t-5.3009e-4*t2)

	aw := 3.239908 +
		1.43713e-3*t +
		1.16092e-4*t2 -
		5.77905e-7*t3
	a := aw +
		s*(2.2838e-3-1.0981e-5*t-1.6078e-6*t2) +
		1.91075e-4*s15

	bw := 8.50935e-5 -
		6.12293e-6*t +
		5.2787e-8*t2
	b := bw + s*(-9.9348e-7+2.0816e-8*t+9.1697e-10*t2)

	return k0 + a*pBar + b*pBar*pBar
}

// sqrtAbs guards S^1.5 terms against negative salinities from corrupt records.
func sqrtAbs(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// detectDensityInversions flags levels where density decreases with depth
// beyond the configured tolerance. Levels missing any of temperature,
// salinity or pressure are excluded from this check only. The returned mask
// is indexed by acquisition order; pairs counts the inverted adjacent pairs
// found on the pressure-sorted sequence.
func detectDensityInversions(p domain.Profile, th Thresholds) (mask []bool, pairs int) {
	mask = make([]bool, len(p.Levels))

	type sample struct {
		index   int // acquisition index
		pres    float64
		density float64
	}
	samples := make([]sample, 0, len(p.Levels))
	for i, l := range p.Levels {
		if !finite(l.Temp) || !finite(l.Psal) || !finite(l.Pres) {
			continue
		}
		samples = append(samples, sample{
			index:   i,
			pres:    l.Pres,
			density: Density(l.Temp, l.Psal, l.Pres),
		})
	}
	if len(samples) < 2 {
		return mask, 0
	}

	sort.SliceStable(samples, func(a, b int) bool { return samples[a].pres < samples[b].pres })

	for i := 0; i < len(samples)-1; i++ {
		if samples[i+1].density-samples[i].density < -th.DensityInversionThreshold {
			mask[samples[i].index] = true
			mask[samples[i+1].index] = true
			pairs++
		}
	}
	return mask, pairs
}
