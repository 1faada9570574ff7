package domain

// Flag is a single-character Argo quality-control flag (reference table 2).
type Flag string

const (
	FlagNoQC         Flag = "0" // no QC performed
	FlagGood         Flag = "1"
	FlagProbablyGood Flag = "2"
	FlagProbablyBad  Flag = "3"
	FlagBad          Flag = "4"
	FlagChanged      Flag = "5" // value changed during upstream QC
	FlagNotUsed      Flag = "6"
	FlagNotUsedAlt   Flag = "7"
	FlagEstimated    Flag = "8"
	FlagMissing      Flag = "9" // missing value
)

// flagSeverity is the explicit escalation order for flag aggregation.
// Higher rank wins; a flag is never replaced by one of lower rank, so a
// physical-limits "bad" can never be downgraded by a detector hit.
// Contextual flags rank at zero so any verdict can overwrite them.
var flagSeverity = map[Flag]int{
	FlagNoQC:         0,
	FlagChanged:      0,
	FlagNotUsed:      0,
	FlagNotUsedAlt:   0,
	FlagEstimated:    0,
	FlagMissing:      0,
	FlagGood:         1,
	FlagProbablyGood: 2,
	FlagProbablyBad:  3,
	FlagBad:          4,
}

// Escalate returns the more severe of current and proposed. Unknown flags
// rank at zero.
func Escalate(current, proposed Flag) Flag {
	if flagSeverity[proposed] > flagSeverity[current] {
		return proposed
	}
	return current
}

// Severity returns the escalation rank of f.
func (f Flag) Severity() int {
	return flagSeverity[f]
}

// IsGood reports whether f counts toward the good-data percentage.
func (f Flag) IsGood() bool {
	return f == FlagGood || f == FlagProbablyGood
}

// IsBad reports whether f counts as bad data.
func (f Flag) IsBad() bool {
	return f == FlagProbablyBad || f == FlagBad
}

// IsContextual reports whether f is neither good nor bad. Contextual flags
// appear in flag summaries but are excluded from the good-data percentage
// denominator.
func (f Flag) IsContextual() bool {
	return !f.IsGood() && !f.IsBad()
}

// ParseFlag maps a flag character from a source QC string to a Flag.
// Anything outside '0'-'9' is treated as no QC performed.
func ParseFlag(c byte) Flag {
	if c < '0' || c > '9' {
		return FlagNoQC
	}
	return Flag(c)
}

// Quality is the overall assessment category of a profile.
type Quality string

const (
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityAcceptable Quality = "acceptable"
	QualityPoor       Quality = "poor"
	QualityUnusable   Quality = "unusable"
)
