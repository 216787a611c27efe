package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/htmltable"
	"github.com/ternarybob/mercatus/internal/models"
	"github.com/ternarybob/mercatus/internal/services/treemap"
)

// pageHTML mirrors the source page layout: the sector table sits at
// index 2 and the returns table at index 6, with filler tables between.
const pageHTML = `<html><body>
<table><tr><td>nav</td></tr></table>
<table><tr><td>summary</td></tr></table>
<table>
  <tr><th>Kod</th><th>Sektör</th><th>Piyasa Değeri (mn $)</th></tr>
  <tr><td>AAA</td><td>Tech</td><td>1.500,00</td></tr>
  <tr><td>BBB</td><td>Bank</td><td>2.000,00</td></tr>
  <tr><td>ZZZ</td><td>Tech</td><td>750,00</td></tr>
</table>
<table><tr><td>filler</td></tr></table>
<table><tr><td>filler</td></tr></table>
<table><tr><td>filler</td></tr></table>
<table>
  <tr><th>Kod</th><th>Günlük Getiri (%)</th></tr>
  <tr><td>AAA</td><td>2,50%</td></tr>
  <tr><td>BBB</td><td>-1,00%</td></tr>
  <tr><td>GONE</td><td>5,00%</td></tr>
</table>
</body></html>`

func TestRunEndToEnd(t *testing.T) {
	service := newTestService(pageHTML, 2, 6)

	snapshot, err := service.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.FetchedAt.IsZero())
	assert.Equal(t, "http://test.local/page", snapshot.Source)

	// ZZZ has no return row, GONE has no sector row; both drop out
	require.Len(t, snapshot.Records, 2)

	first := snapshot.Records[0]
	assert.Equal(t, "AAA", first.Ticker)
	assert.Equal(t, "Tech", first.Sector)
	assert.Equal(t, 1500.0, first.MarketCapMUSD)
	assert.Equal(t, 0.025, first.ReturnPct)
	assert.Equal(t, models.CategoryMildPositive, first.Category)

	assert.Equal(t, models.Summary{Total: 2, Positive: 1, Negative: 1}, snapshot.Summary)

	// Root + 2 sectors + 2 leaves
	require.NotNil(t, snapshot.Chart)
	assert.Equal(t, 5, snapshot.Chart.NodeCount())
}

func TestRunIsIdempotent(t *testing.T) {
	service := newTestService(pageHTML, 2, 6)

	first, err := service.Run(context.Background())
	require.NoError(t, err)
	second, err := service.Run(context.Background())
	require.NoError(t, err)

	// IDs and timestamps differ per run; records and chart must not
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Chart, second.Chart)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestRunFetchFailure(t *testing.T) {
	logger := arbor.NewLogger()
	fetchErr := fmt.Errorf("connection refused")
	service := NewService(&stubFetcher{err: fetchErr}, treemap.NewBuilder(logger), 2, 6, logger)

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
}

func TestRunTableIndexOutOfRange(t *testing.T) {
	service := newTestService("<table><tr><td>only one</td></tr></table>", 2, 6)

	_, err := service.Run(context.Background())
	require.Error(t, err)

	var layoutErr *htmltable.LayoutError
	require.True(t, errors.As(err, &layoutErr))
	assert.Equal(t, 2, layoutErr.Index)
	assert.Equal(t, 1, layoutErr.Count)
}

func TestRunNoTables(t *testing.T) {
	service := newTestService("<html><body><p>maintenance page</p></body></html>", 2, 6)

	_, err := service.Run(context.Background())
	require.Error(t, err)

	var extractErr *htmltable.ExtractError
	assert.True(t, errors.As(err, &extractErr))
}
