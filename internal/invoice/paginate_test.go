package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		expected []Page
	}{
		{
			name:     "no rows",
			rows:     0,
			expected: []Page{{Start: 0, End: 0, Totals: true}},
		},
		{
			name:     "totals fit under rows",
			rows:     4,
			expected: []Page{{Start: 0, End: 4, Totals: true}},
		},
		{
			name: "totals pushed to second page",
			rows: 8,
			expected: []Page{
				{Start: 0, End: 8},
				{Start: 8, End: 8, Totals: true},
			},
		},
		{
			name: "first page full",
			rows: 10,
			expected: []Page{
				{Start: 0, End: 10},
				{Start: 10, End: 10, Totals: true},
			},
		},
		{
			name: "overflow onto a larger page",
			rows: 14,
			expected: []Page{
				{Start: 0, End: 10},
				{Start: 10, End: 14, Totals: true},
			},
		},
		{
			name: "three pages",
			rows: 35,
			expected: []Page{
				{Start: 0, End: 10},
				{Start: 10, End: 22},
				{Start: 22, End: 34},
				{Start: 34, End: 35, Totals: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paginate(tt.rows, 10, 12))
		})
	}
}

func TestPaginate_CoversEveryRowOnce(t *testing.T) {
	for rows := 0; rows < 120; rows++ {
		pages := Paginate(rows, FirstPageRows, OtherPageRows)
		require.NotEmpty(t, pages)

		next := 0
		totals := 0
		for i, p := range pages {
			assert.Equal(t, next, p.Start)
			capacity := OtherPageRows
			if i == 0 {
				capacity = FirstPageRows
			}
			used := p.End - p.Start
			if p.Totals {
				used += TotalsBlockRows
				totals++
			}
			assert.LessOrEqual(t, used, capacity, "rows=%d page=%d", rows, i)
			next = p.End
		}
		assert.Equal(t, rows, next)
		assert.Equal(t, 1, totals)
		assert.True(t, pages[len(pages)-1].Totals)
	}
}

func TestPaginate_ClampsCapacity(t *testing.T) {
	pages := Paginate(2, 0, 0)
	require.Len(t, pages, 3)
	assert.Equal(t, Page{Start: 0, End: 1}, pages[0])
	assert.Equal(t, Page{Start: 1, End: 2}, pages[1])
	assert.Equal(t, Page{Start: 2, End: 2, Totals: true}, pages[2])
}
