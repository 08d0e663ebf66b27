package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/siltlabs/silt/internal/agent"
	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
)

func traceFixture(t *testing.T) ChangesResult {
	t.Helper()
	siteID, err := base.ParseSiteID(testSiteID)
	require.NoError(t, err)

	chunks := []agent.Chunk{
		{
			Changes: []change.Change{
				{Table: "items", PK: []byte{0x01}, Column: "qty", Value: change.Integer(3), ColVersion: 1, DBVersion: 4, Seq: 0, SiteID: siteID, CL: 1},
				{Table: "items", PK: []byte{0x01}, Column: "name", Value: change.Text("bolt"), ColVersion: 1, DBVersion: 4, Seq: 1, SiteID: siteID, CL: 1},
			},
			Range: base.NewSeqRange(0, 1),
		},
		{
			Changes: []change.Change{
				{Table: "items", PK: []byte{0x02}, Column: "price", Value: change.Real(2.5), ColVersion: 2, DBVersion: 4, Seq: 2, SiteID: siteID, CL: 1},
			},
			Range: base.NewSeqRange(2, 5),
		},
	}
	return traceChunks(siteID, 4, chunks)
}

func TestChunkTrace_GoldenText(t *testing.T) {
	result := traceFixture(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "chunk_trace", []byte(result.String()))
}

func TestChunkTrace_GoldenJSON(t *testing.T) {
	result := traceFixture(t)

	data, err := json.MarshalIndent(result, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "chunk_trace_json", data)
}
