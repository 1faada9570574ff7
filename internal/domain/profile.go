package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// argoEpoch is the Argo JULD reference: days are counted from 1950-01-01 UTC.
var argoEpoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// Param identifies a measured parameter using its Argo variable name.
type Param string

const (
	ParamPres Param = "PRES" // pressure, dbar
	ParamTemp Param = "TEMP" // in-situ temperature, °C
	ParamPsal Param = "PSAL" // practical salinity, PSU
)

// Params lists all parameters in a fixed order. Detector loops and report
// assembly iterate this slice so output ordering never depends on map order.
var Params = []Param{ParamPres, ParamTemp, ParamPsal}

// RawProfileRecord is the flat JSON structure published by the collector.
// Nulls mark NetCDF fill values; QC strings are positional, one character
// per level.
type RawProfileRecord struct {
	PlatformNumber string     `json:"platform_number"`
	CycleNumber    int        `json:"cycle_number"`
	Juld           float64    `json:"juld"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Pres           []*float64 `json:"pres"`
	Temp           []*float64 `json:"temp"`
	Psal           []*float64 `json:"psal"`
	PresQC         string     `json:"pres_qc,omitempty"`
	TempQC         string     `json:"temp_qc,omitempty"`
	PsalQC         string     `json:"psal_qc,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Level is one sample of a vertical profile. Missing measurements are NaN.
type Level struct {
	Pres float64
	Temp float64
	Psal float64

	// Source QC flags as provided by the upstream data file.
	PresQC Flag
	TempQC Flag
	PsalQC Flag
}

// Value returns the level's measurement for param.
func (l Level) Value(p Param) float64 {
	switch p {
	case ParamPres:
		return l.Pres
	case ParamTemp:
		return l.Temp
	case ParamPsal:
		return l.Psal
	}
	return math.NaN()
}

// SourceFlag returns the upstream QC flag for param. An unset flag reads as
// no QC performed.
func (l Level) SourceFlag(p Param) Flag {
	var f Flag
	switch p {
	case ParamPres:
		f = l.PresQC
	case ParamTemp:
		f = l.TempQC
	case ParamPsal:
		f = l.PsalQC
	}
	if f == "" {
		return FlagNoQC
	}
	return f
}

// Profile is one vertical cast of oceanographic measurements. It is treated
// as immutable once parsed; the QC engine never modifies it.
type Profile struct {
	ID             string
	PlatformNumber string
	CycleNumber    int
	Latitude       float64
	Longitude      float64
	Time           time.Time
	Levels         []Level
}

// Values returns a fresh slice of the profile's measurements for param, in
// acquisition order. Callers may mutate the result freely.
func (p Profile) Values(param Param) []float64 {
	out := make([]float64, len(p.Levels))
	for i, l := range p.Levels {
		out[i] = l.Value(param)
	}
	return out
}

// ParseRawProfile deserializes a RawEvent's value into a Profile.
// The level count is taken from the pressure array; shorter temperature or
// salinity arrays are padded with NaN rather than rejected, since partial
// parameter coverage is a quality problem, not a parse failure.
func ParseRawProfile(raw RawEvent) (Profile, error) {
	var rec RawProfileRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Profile{}, fmt.Errorf("parse raw profile: %w", err)
	}
	if rec.PlatformNumber == "" {
		return Profile{}, fmt.Errorf("parse raw profile: missing platform_number")
	}

	n := len(rec.Pres)
	levels := make([]Level, n)
	for i := range levels {
		levels[i] = Level{
			Pres:   deref(rec.Pres, i),
			Temp:   deref(rec.Temp, i),
			Psal:   deref(rec.Psal, i),
			PresQC: flagAt(rec.PresQC, i),
			TempQC: flagAt(rec.TempQC, i),
			PsalQC: flagAt(rec.PsalQC, i),
		}
	}

	return Profile{
		ID:             fmt.Sprintf("%s_%d", rec.PlatformNumber, rec.CycleNumber),
		PlatformNumber: rec.PlatformNumber,
		CycleNumber:    rec.CycleNumber,
		Latitude:       derefScalar(rec.Latitude),
		Longitude:      derefScalar(rec.Longitude),
		Time:           JuldToTime(rec.Juld),
		Levels:         levels,
	}, nil
}

// JuldToTime converts an Argo JULD (days since 1950-01-01 UTC) to a time.
// A zero or negative JULD yields the zero time, matching profiles whose
// date failed upstream position/date checks.
func JuldToTime(juld float64) time.Time {
	if juld <= 0 || math.IsNaN(juld) {
		return time.Time{}
	}
	return argoEpoch.Add(time.Duration(juld * float64(24*time.Hour))).UTC()
}

// Record converts the profile back into its wire form, mapping NaN to null
// so the result is valid JSON.
func (p Profile) Record() RawProfileRecord {
	rec := RawProfileRecord{
		PlatformNumber: p.PlatformNumber,
		CycleNumber:    p.CycleNumber,
		Latitude:       ref(p.Latitude),
		Longitude:      ref(p.Longitude),
		Pres:           make([]*float64, len(p.Levels)),
		Temp:           make([]*float64, len(p.Levels)),
		Psal:           make([]*float64, len(p.Levels)),
	}
	if !p.Time.IsZero() {
		rec.Juld = p.Time.Sub(argoEpoch).Hours() / 24
	}
	presQC := make([]byte, len(p.Levels))
	tempQC := make([]byte, len(p.Levels))
	psalQC := make([]byte, len(p.Levels))
	for i, l := range p.Levels {
		rec.Pres[i] = ref(l.Pres)
		rec.Temp[i] = ref(l.Temp)
		rec.Psal[i] = ref(l.Psal)
		presQC[i] = flagByte(l.PresQC)
		tempQC[i] = flagByte(l.TempQC)
		psalQC[i] = flagByte(l.PsalQC)
	}
	rec.PresQC = string(presQC)
	rec.TempQC = string(tempQC)
	rec.PsalQC = string(psalQC)
	return rec
}

func deref(vs []*float64, i int) float64 {
	if i >= len(vs) || vs[i] == nil {
		return math.NaN()
	}
	return *vs[i]
}

func derefScalar(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func ref(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func flagAt(qc string, i int) Flag {
	if i >= len(qc) {
		return FlagNoQC
	}
	return ParseFlag(qc[i])
}

func flagByte(f Flag) byte {
	if len(f) != 1 {
		return '0'
	}
	return f[0]
}
