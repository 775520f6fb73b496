package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenres(t *testing.T) {
	tests := map[string]string{
		`[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]`: "Animation Comedy",
		`[{'id': 10751, 'name': "Children's"}]`:                          "Children's",
		`[]`:                                                             "",
		`not a list`:                                                     "",
		``:                                                               "",
		`[{'id': 1}]`:                                                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseGenres(in), in)
	}
}

const sampleCSV = `adult,genres,id,overview,tagline,title,vote_average
False,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]",862,"Led by Woody, toys come alive.",,Toy Story,7.7
False,"[{'id': 18, 'name': 'Drama'}]",1997-08-20,Bad row with a date id,,Broken,5
False,,949,A group of robbers.,A Los Angeles crime saga,Heat,
False,[],31357.0,,,Waiting to Exhale,6.1
False,[],12,No title here,,,3
`

func TestLoadCSV(t *testing.T) {
	records, stats, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, CSVStats{Rows: 5, Loaded: 3, Dropped: 2}, stats)
	require.Len(t, records, 3)

	toy := records[0]
	assert.Equal(t, 862, toy.ID)
	assert.Equal(t, "Toy Story Toy Story  Led by Woody, toys come alive. Animation Comedy", toy.Soup)
	require.NotNil(t, toy.Rating)
	assert.Equal(t, 7.7, *toy.Rating)

	heat := records[1]
	assert.Equal(t, "Heat Heat A Los Angeles crime saga A group of robbers. ", heat.Soup)
	assert.Nil(t, heat.Rating)

	assert.Equal(t, 31357, records[2].ID)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader("id,title\n1,A\n"))
	assert.Error(t, err)
}

func TestBuildSoup(t *testing.T) {
	genres := GenreNames([]int{28, 99, 12}, map[int]string{28: "Action", 12: "Adventure"})
	assert.Equal(t, []string{"Action", "", "Adventure"}, genres)
	assert.Equal(t, "Heat Heat Action  Adventure A heist.", BuildSoup("Heat", genres, "A heist."))
}
