package domain

import (
	"math"
	"sort"
	"time"
)

const (
	oneCallDailyDays  = 7
	oneCallHourlySlot = 24
	freeTierDays      = 5
	freeTierHourly    = 8

	// minCompleteBucket is the number of 3-hour samples (out of 8) a trailing
	// day needs before it is shown.
	minCompleteBucket = 6
)

// DayBucket groups the samples that fall on one local calendar date.
type DayBucket struct {
	Date    time.Time // local midnight
	Samples []Sample
}

// GroupByLocalDay buckets samples by calendar date in zone, sorted by date.
// A trailing bucket with fewer than 6 samples is dropped.
func GroupByLocalDay(samples []Sample, zone *time.Location) []DayBucket {
	zone = zoneOrUTC(zone)
	byDate := make(map[string]*DayBucket)
	for _, s := range samples {
		day := startOfDay(s.Time, zone)
		key := day.Format(time.DateOnly)
		b, ok := byDate[key]
		if !ok {
			b = &DayBucket{Date: day}
			byDate[key] = b
		}
		b.Samples = append(b.Samples, s)
	}

	buckets := make([]DayBucket, 0, len(byDate))
	for _, b := range byDate {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })

	if n := len(buckets); n > 0 && len(buckets[n-1].Samples) < minCompleteBucket {
		buckets = buckets[:n-1]
	}
	return buckets
}

// RemainingTodayPOP returns the highest POP among samples after now and
// before local midnight, or 0 when none remain.
func RemainingTodayPOP(samples []Sample, now time.Time, zone *time.Location) float64 {
	zone = zoneOrUTC(zone)
	midnight := startOfDay(now, zone).AddDate(0, 0, 1)
	found := false
	highest := 0.0
	for _, s := range samples {
		if !s.Time.After(now) || !s.Time.Before(midnight) {
			continue
		}
		if !found || s.POP > highest {
			highest = s.POP
			found = true
		}
	}
	return highest
}

// DayLabel names the index-th forecast day.
func DayLabel(index int, day time.Time) string {
	switch index {
	case 0:
		return "Rest of Today"
	case 1:
		return "Tomorrow"
	}
	return day.Format("Mon")
}

// HourLabel names the index-th hourly slot in zone, e.g. "Now" or "3 PM".
func HourLabel(index int, t time.Time, zone *time.Location) string {
	if index == 0 {
		return "Now"
	}
	return t.In(zoneOrUTC(zone)).Format("3 PM")
}

// DailyFromOneCall builds up to 7 forecast days from One Call data. The first
// day's POP covers only the hours left today.
func DailyFromOneCall(oc OneCall, now time.Time) []ForecastDay {
	daily := oc.Daily
	if len(daily) > oneCallDailyDays {
		daily = daily[:oneCallDailyDays]
	}

	days := make([]ForecastDay, 0, len(daily))
	for i, d := range daily {
		pop := d.POP
		if i == 0 && oc.Hourly != nil {
			pop = RemainingTodayPOP(oc.Hourly, now, oc.Zone)
		}
		days = append(days, ForecastDay{
			Date:      DayLabel(i, d.Time.In(zoneOrUTC(oc.Zone))),
			TempMax:   round(d.TempMax),
			TempMin:   round(d.TempMin),
			Desc:      d.Conditions.Description,
			Icon:      d.Conditions.Icon,
			Humidity:  d.Humidity,
			WindSpeed: KilometresPerHour(d.WindSpeed),
			POP:       Percent(pop),
		})
	}
	return days
}

// DailyFromSeries builds up to 5 forecast days from free-tier 3-hour samples.
func DailyFromSeries(fs ForecastSeries, now time.Time) []ForecastDay {
	buckets := GroupByLocalDay(fs.Samples, fs.Zone)
	if len(buckets) > freeTierDays {
		buckets = buckets[:freeTierDays]
	}

	days := make([]ForecastDay, 0, len(buckets))
	for i, b := range buckets {
		hi, lo := math.Inf(-1), math.Inf(1)
		for _, s := range b.Samples {
			hi = math.Max(hi, s.TempMax)
			lo = math.Min(lo, s.TempMin)
		}
		rep := b.Samples[min(4, len(b.Samples)/2)]

		pop := rep.POP
		if i == 0 {
			pop = RemainingTodayPOP(b.Samples, now, fs.Zone)
		}
		days = append(days, ForecastDay{
			Date:      DayLabel(i, b.Date),
			TempMax:   round(hi),
			TempMin:   round(lo),
			Desc:      rep.Conditions.Description,
			Icon:      rep.Conditions.Icon,
			Humidity:  rep.Humidity,
			WindSpeed: KilometresPerHour(rep.WindSpeed),
			POP:       Percent(pop),
		})
	}
	return days
}

// HourlyFromOneCall builds the next 24 hourly slots, including wind,
// humidity and UV which the free tier does not provide.
func HourlyFromOneCall(oc OneCall) []HourlySlot {
	hourly := oc.Hourly
	if len(hourly) > oneCallHourlySlot {
		hourly = hourly[:oneCallHourlySlot]
	}
	slots := make([]HourlySlot, 0, len(hourly))
	for i, h := range hourly {
		wind := KilometresPerHour(h.WindSpeed)
		deg := h.WindDeg
		humidity := h.Humidity
		uvi := h.UVI
		slots = append(slots, HourlySlot{
			Time:      HourLabel(i, h.Time, oc.Zone),
			Temp:      round(h.Temp),
			Icon:      h.Conditions.Icon,
			POP:       Percent(h.POP),
			WindSpeed: &wind,
			WindDeg:   &deg,
			Humidity:  &humidity,
			UVI:       &uvi,
		})
	}
	return slots
}

// HourlyFromSeries builds 8 three-hour slots (24 hours) from free-tier data.
func HourlyFromSeries(fs ForecastSeries) []HourlySlot {
	samples := fs.Samples
	if len(samples) > freeTierHourly {
		samples = samples[:freeTierHourly]
	}
	slots := make([]HourlySlot, 0, len(samples))
	for i, s := range samples {
		slots = append(slots, HourlySlot{
			Time: HourLabel(i, s.Time, fs.Zone),
			Temp: round(s.Temp),
			Icon: s.Conditions.Icon,
			POP:  Percent(s.POP),
		})
	}
	return slots
}

func startOfDay(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
}

func zoneOrUTC(zone *time.Location) *time.Location {
	if zone == nil {
		return time.UTC
	}
	return zone
}
