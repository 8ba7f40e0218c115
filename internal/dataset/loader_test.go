package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/drawrun/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func csvSeries(id int) string {
	var b strings.Builder
	for i := 0; i < domain.SeriesLength; i++ {
		b.WriteString(fmt.Sprintf("%d", id))
		for n := 1; n <= domain.EventSize; n++ {
			b.WriteString(fmt.Sprintf(",%d", n))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestLoadCSV_Valid(t *testing.T) {
	path := writeFile(t, "draws.csv", csvSeries(1)+csvSeries(2)+csvSeries(3))

	stream, err := Load(path)
	require.NoError(t, err)

	require.Len(t, stream, 3)
	for i, s := range stream {
		assert.Equal(t, i+1, s.ID)
		assert.Len(t, s.Events, domain.SeriesLength)
	}
}

func TestLoadCSV_HeaderRowSkipped(t *testing.T) {
	header := "series_id,n1,n2,n3,n4,n5,n6,n7,n8,n9,n10,n11,n12,n13,n14\n"
	path := writeFile(t, "draws.csv", header+csvSeries(1))

	stream, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, stream, 1)
}

func TestLoadCSV_Rejections(t *testing.T) {
	valid := "1,2,3,4,5,6,7,8,9,10,11,12,13,14"

	cases := []struct {
		name    string
		content string
	}{
		{"duplicate number", strings.Repeat("1,1,1,3,4,5,6,7,8,9,10,11,12,13,14\n", domain.SeriesLength)},
		{"out of range", strings.Repeat("1,1,2,3,4,5,6,7,8,9,10,11,12,13,26\n", domain.SeriesLength)},
		{"short series", "1," + valid + "\n"},
		{"descending ids", csvSeries(2) + csvSeries(1)},
		{"non-numeric", strings.Repeat("1,x,2,3,4,5,6,7,8,9,10,11,12,13,14\n", domain.SeriesLength)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", tc.content)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadJSON_Valid(t *testing.T) {
	events := `[[1,2,3,4,5,6,7,8,9,10,11,12,13,14],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,15],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,16],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,17],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,18],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,19],
	            [1,2,3,4,5,6,7,8,9,10,11,12,13,20]]`
	content := fmt.Sprintf(`[{"id":1,"events":%s},{"id":2,"events":%s}]`, events, events)
	path := writeFile(t, "draws.json", content)

	stream, err := Load(path)
	require.NoError(t, err)

	require.Len(t, stream, 2)
	assert.Equal(t, 1, stream[0].ID)
	assert.Equal(t, 2, stream[1].ID)
	last := stream[0].Last()
	assert.True(t, last.Contains(20))
}

func TestLoadJSON_RejectsMalformedEvent(t *testing.T) {
	content := `[{"id":1,"events":[[1,2,3]]}]`
	path := writeFile(t, "draws.json", content)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidEvent))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
