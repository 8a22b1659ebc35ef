package domain

type DurationBucket struct {
	Value string
	Label string
	Min   int
	Max   *int // nil = open-ended
}

func intp(v int) *int { return &v }

// DurationBuckets are the storefront duration filters, in display order.
var DurationBuckets = []DurationBucket{
	{Value: "short", Label: "Kurz (bis 2 Std.)", Min: 0, Max: intp(120)},
	{Value: "medium", Label: "Mittel (2-6 Std.)", Min: 120, Max: intp(360)},
	{Value: "long", Label: "Lang (6-24 Std.)", Min: 360, Max: intp(1440)},
	{Value: "multi_day", Label: "Mehrtägig", Min: 1440},
}

func LookupDurationBucket(value string) (DurationBucket, bool) {
	for _, b := range DurationBuckets {
		if b.Value == value {
			return b, true
		}
	}
	return DurationBucket{}, false
}

// Contains reports whether minutes falls in [Min, Max].
func (b DurationBucket) Contains(minutes int) bool {
	if minutes < b.Min {
		return false
	}
	return b.Max == nil || minutes <= *b.Max
}
