package domain

import (
	"errors"
	"strings"
	"time"
)

// WaterLevelCacheTTL is how long a station series is served from cache.
const WaterLevelCacheTTL = 15 * time.Minute

const (
	DefaultStationID = "17"
	DefaultLang      = "EN"
)

var (
	ErrInvalidStation = errors.New("stationId must be numeric")
	ErrInvalidLang    = errors.New("lang must be EN or FR")
)

// WaterLevelQuery identifies one station series in one language.
type WaterLevelQuery struct {
	StationID string
	Lang      string
}

// NewWaterLevelQuery validates and normalises the request parameters,
// applying defaults for empty values.
func NewWaterLevelQuery(stationID, lang string) (WaterLevelQuery, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		stationID = DefaultStationID
	}
	for _, r := range stationID {
		if r < '0' || r > '9' {
			return WaterLevelQuery{}, ErrInvalidStation
		}
	}

	lang = strings.ToUpper(strings.TrimSpace(lang))
	switch lang {
	case "":
		lang = DefaultLang
	case "EN", "FR":
	default:
		return WaterLevelQuery{}, ErrInvalidLang
	}
	return WaterLevelQuery{StationID: stationID, Lang: lang}, nil
}

// CacheKey is the "station|lang" key the series is cached under.
func (q WaterLevelQuery) CacheKey() string {
	return q.StationID + "|" + q.Lang
}
