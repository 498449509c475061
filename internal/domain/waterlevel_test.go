package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWaterLevelQuery(t *testing.T) {
	tests := []struct {
		name      string
		stationID string
		lang      string
		want      WaterLevelQuery
		wantErr   error
	}{
		{name: "defaults", want: WaterLevelQuery{StationID: "17", Lang: "EN"}},
		{name: "french lower case", stationID: "42", lang: "fr", want: WaterLevelQuery{StationID: "42", Lang: "FR"}},
		{name: "non numeric station", stationID: "17/../admin", wantErr: ErrInvalidStation},
		{name: "unknown language", lang: "DE", wantErr: ErrInvalidLang},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewWaterLevelQuery(tt.stationID, tt.lang)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWaterLevelQuery_CacheKey(t *testing.T) {
	q, err := NewWaterLevelQuery("17", "en")
	require.NoError(t, err)
	assert.Equal(t, "17|EN", q.CacheKey())
}
