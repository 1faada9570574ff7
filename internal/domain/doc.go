// Package domain models Argo float profile data and its quality-control output.
//
// # Data Source
//
// Argo profiles originate from the international Argo float program. Floats
// drift at depth, surface on a roughly 10-day cycle, and report one vertical
// profile per cycle: pressure (dbar), temperature (°C, ITS-90) and practical
// salinity (PSU) at each sampled level. The upstream collector service
// downloads the per-month NetCDF archives (e.g. from the Ifremer GDAC),
// flattens each profile into JSON, and publishes it to the Kafka source topic.
//
// # Argo Data Conventions
//
// Profile identity:
//
//	"<platform_number>_<cycle_number>"  →  e.g. "2902746_15"
//	means cycle 15 of float WMO 2902746. Platform numbers are WMO IDs;
//	cycle numbers increment per surfacing.
//
// Time:
//
//	JULD is days since 1950-01-01T00:00:00 UTC (the Argo reference epoch),
//	as a float64. Fractional days carry the time of day.
//
// Missing values:
//
//	NetCDF fill values are published as JSON nulls by the collector.
//	In memory a missing measurement is math.NaN(); any parameter may be
//	missing at any level independently of the others.
//
// QC flags (Argo reference table 2), one character per level per parameter:
//
//	'0' no QC performed       '5' value changed
//	'1' good                  '6' not used
//	'2' probably good         '7' not used (alternate)
//	'3' probably bad          '8' estimated/interpolated
//	'4' bad                   '9' missing value
//
// Flags '1' and '2' count as good data, '3' and '4' as bad. The remaining
// flags are contextual: they are tallied in report summaries but excluded
// from the good-data percentage entirely. Flag strings are positional
// ("11412…", one character per level); a missing or short string means no
// upstream QC was performed for that level.
//
// # Level Ordering
//
// Levels arrive in acquisition order, which is usually but not always
// monotonic in pressure. Checks that need depth ordering (depth-gap
// validation, density inversion) sort by pressure internally and map results
// back to acquisition indices.
package domain
