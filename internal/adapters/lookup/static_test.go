package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

func TestLookupInstrumentNormalizesCode(t *testing.T) {
	static := NewStatic()

	summary, err := static.LookupInstrument(context.Background(), "00700")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Tencent Holdings", summary.Name)

	summary, err = static.LookupInstrument(context.Background(), "00700.HK")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "00700.hk", summary.Code)
}

func TestLookupInstrumentUnknownIsNotAnError(t *testing.T) {
	static := NewStatic()

	summary, err := static.LookupInstrument(context.Background(), "99999")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestAddInstrument(t *testing.T) {
	static := NewStatic()
	static.AddInstrument(domain.InstrumentSummary{Code: "01211.hk", Name: "BYD Company", DocumentCount: 96})

	summary, err := static.LookupInstrument(context.Background(), "01211")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "BYD Company", summary.Name)
}

func TestLatestByCategory(t *testing.T) {
	static := NewStatic()
	latest := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	static.SetFreshness(domain.CategoryRightsIssues, latest)

	byCategory, err := static.LatestByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Timestamp(latest), byCategory[domain.CategoryRightsIssues])
	assert.Contains(t, byCategory, domain.CategoryDocuments)
}
