package network

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RetentionDays is a CloudWatch Logs retention period. The zero value is
// unset and resolves to OneWeek.
type RetentionDays int

const (
	OneDay         RetentionDays = 1
	ThreeDays      RetentionDays = 3
	FiveDays       RetentionDays = 5
	OneWeek        RetentionDays = 7
	TwoWeeks       RetentionDays = 14
	OneMonth       RetentionDays = 30
	TwoMonths      RetentionDays = 60
	ThreeMonths    RetentionDays = 90
	FourMonths     RetentionDays = 120
	FiveMonths     RetentionDays = 150
	SixMonths      RetentionDays = 180
	OneYear        RetentionDays = 365
	ThirteenMonths RetentionDays = 400
	EighteenMonths RetentionDays = 545
	TwoYears       RetentionDays = 731
	ThreeYears     RetentionDays = 1096
	FiveYears      RetentionDays = 1827
	SixYears       RetentionDays = 2192
	SevenYears     RetentionDays = 2557
	EightYears     RetentionDays = 2922
	NineYears      RetentionDays = 3288
	TenYears       RetentionDays = 3653
	// Infinite keeps log events forever; RetentionInDays is omitted.
	Infinite RetentionDays = 9999
)

var retentionNames = []struct {
	name  string
	alias string
	days  RetentionDays
}{
	{"one_day", "1d", OneDay},
	{"three_days", "3d", ThreeDays},
	{"five_days", "5d", FiveDays},
	{"one_week", "1w", OneWeek},
	{"two_weeks", "2w", TwoWeeks},
	{"one_month", "1mo", OneMonth},
	{"two_months", "2mo", TwoMonths},
	{"three_months", "3mo", ThreeMonths},
	{"four_months", "4mo", FourMonths},
	{"five_months", "5mo", FiveMonths},
	{"six_months", "6mo", SixMonths},
	{"one_year", "1y", OneYear},
	{"thirteen_months", "13mo", ThirteenMonths},
	{"eighteen_months", "18mo", EighteenMonths},
	{"two_years", "2y", TwoYears},
	{"three_years", "3y", ThreeYears},
	{"five_years", "5y", FiveYears},
	{"six_years", "6y", SixYears},
	{"seven_years", "7y", SevenYears},
	{"eight_years", "8y", EightYears},
	{"nine_years", "9y", NineYears},
	{"ten_years", "10y", TenYears},
	{"infinite", "forever", Infinite},
}

// ParseRetentionDays accepts a day count ("7") or a name ("one_week",
// "1w", "infinite"). Names are case-insensitive and may use dashes.
func ParseRetentionDays(s string) (RetentionDays, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if key == "" {
		return 0, fmt.Errorf("empty retention period")
	}

	if n, err := strconv.Atoi(key); err == nil {
		r := RetentionDays(n)
		if !r.Valid() {
			return 0, fmt.Errorf("unsupported retention period: %d days", n)
		}
		return r, nil
	}

	for _, rn := range retentionNames {
		if key == rn.name || key == rn.alias {
			return rn.days, nil
		}
	}
	return 0, fmt.Errorf("unknown retention period %q", s)
}

// Valid reports whether r is one of the periods CloudWatch Logs accepts.
func (r RetentionDays) Valid() bool {
	for _, rn := range retentionNames {
		if rn.days == r {
			return true
		}
	}
	return false
}

// InDays returns the RetentionInDays value to declare; 0 means unlimited.
func (r RetentionDays) InDays() int {
	if r == Infinite {
		return 0
	}
	return int(r)
}

// String returns the name of the period, or its day count.
func (r RetentionDays) String() string {
	for _, rn := range retentionNames {
		if rn.days == r {
			return rn.name
		}
	}
	return strconv.Itoa(int(r))
}

// Set implements pflag.Value.
func (r *RetentionDays) Set(s string) error {
	v, err := ParseRetentionDays(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Type implements pflag.Value.
func (r *RetentionDays) Type() string { return "retention" }

// UnmarshalYAML accepts the same forms as ParseRetentionDays.
func (r *RetentionDays) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: retention must be a scalar", value.Line)
	}
	v, err := ParseRetentionDays(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*r = v
	return nil
}

// MarshalYAML writes the period by name.
func (r RetentionDays) MarshalYAML() (any, error) {
	return r.String(), nil
}
