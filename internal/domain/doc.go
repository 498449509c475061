// Package domain models the lake data served to the Redstone Lake website.
//
// # Data Sources
//
// Weather comes from OpenWeatherMap. The One Call 3.0 endpoint (paid tier)
// returns current conditions, 48 hourly and 8 daily points plus government
// alerts in a single payload. The free tier splits this into /weather
// (current conditions) and /forecast (5 days at 3-hour steps). Both are
// normalised into [OneCall] and [ForecastSeries] by the adapter so the
// reshaping rules below work on either tier.
//
// Water levels come from the Parks Canada hydrometric chart API and are
// relayed verbatim; this package only validates the query.
//
// Fire-ban status comes from the Dysart et al municipal alert banner feed,
// a JSON array of {title, description, color}.
//
// # Weather Conventions
//
// Units:
//
//	Temperatures arrive in °C (units=metric) and are rounded to integers.
//	Wind arrives in m/s and is shown in km/h: round(v * 3.6).
//	Visibility arrives in metres and is shown in km: round(v / 1000).
//	Probability of precipitation (POP) arrives as 0..1 and is shown as a
//	percentage: round(p * 100).
//
// Local days:
//
//	Grouping and "today" both use the UTC offset reported by the upstream
//	(timezone_offset on One Call, city.timezone on the free tier), never the
//	server's own zone.
//
// Day labels:
//
//	"Rest of Today", "Tomorrow", then the short weekday ("Wed").
//
// "Rest of Today" POP:
//
//	The maximum POP over samples strictly after now and before local
//	midnight. When no such sample exists the value is 0, not the daily POP.
//
// Free-tier grouping:
//
//	3-hour samples are bucketed by local calendar date. A trailing bucket
//	with fewer than 6 of its 8 expected samples is dropped as incomplete, and
//	at most 5 days are kept. Each day uses max(temp_max), min(temp_min) and a
//	representative sample at index min(4, len/2) for icon, description,
//	humidity, wind and POP.
//
// # Fire-Ban Determination
//
// A [Classifier] reads the banner text and returns an [AIAnalysis]. When no
// classifier is configured, or it fails, [DetectFireBan] scans the banners
// for fire-ban keywords and a red banner colour:
//
//	keyword match  +0.7
//	red banner     +0.4
//	confidence is capped at 1.0
//
// Restricted fire zone wording ("restricted fire zone", "RFZ") yields a
// restricted ban; any other match is treated as a total ban.
package domain
