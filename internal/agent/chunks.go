package agent

import (
	"context"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
	"github.com/siltlabs/silt/internal/store"
)

// Chunk is one byte-budgeted transmission unit: the change rows plus the
// sequence range they account for.
type Chunk struct {
	Changes []change.Change
	Range   base.SeqRange
}

// VersionChunks reads one version's change log and returns it chunked
// under maxBufSize (DefaultMaxChangesByteSize when <= 0). Returns nil
// when the version has no captured changes.
//
// The transport would consume chunks lazily; this materializes them for
// callers that want the whole set, like the CLI.
func (a *Agent) VersionChunks(ctx context.Context, v base.DBVersion, maxBufSize int) ([]Chunk, error) {
	if maxBufSize <= 0 {
		maxBufSize = change.DefaultMaxChangesByteSize
	}

	lastSeq, _, err := store.MaxSeqTS(ctx, a.store.DB(), a.siteID, v)
	if err != nil {
		return nil, versionErr(a.siteID, v, err)
	}
	if lastSeq == nil {
		return nil, nil
	}

	src, err := store.ChangesForVersion(ctx, a.store.DB(), a.siteID, v, base.NewSeqRange(0, *lastSeq))
	if err != nil {
		return nil, versionErr(a.siteID, v, err)
	}
	defer src.Close()

	chunker := change.NewChunkedChanges(src, 0, *lastSeq, maxBufSize)

	var out []Chunk
	for chunker.Next() {
		changes, rng := chunker.Chunk()
		out = append(out, Chunk{Changes: changes, Range: rng})
	}
	if err := chunker.Err(); err != nil {
		return nil, versionErr(a.siteID, v, err)
	}
	return out, nil
}
