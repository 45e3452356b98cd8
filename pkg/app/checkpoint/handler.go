package checkpoint

import (
	"fmt"
	"math/big"

	"github.com/panda73111/mod0keecrack/internal/services"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

// Handle reads the checkpoint store
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store := services.NewCheckpointStore(ctx.Fs, req.StorePath)
	records, err := store.Records()
	if err != nil {
		return nil, app.NewError(app.ErrCodeCheckpoint, "failed to read checkpoint store", err)
	}

	response := &Response{StorePath: store.Path(), Records: []Record{}}
	for _, rec := range records {
		response.DatabasePath = rec.DatabasePath
		if req.StartingPassword != "" && rec.StartingPassword != req.StartingPassword {
			continue
		}
		response.Records = append(response.Records, newRecord(rec.StartingPassword, rec.CurrentPassword))
	}

	if req.StartingPassword != "" && len(response.Records) == 0 {
		return nil, app.NewError(app.ErrCodeInvalidInput, fmt.Sprintf("no checkpoint for starting password %q", req.StartingPassword), nil)
	}

	ctx.Log(fmt.Sprintf("Read %d checkpoint records from %s", len(records), store.Path()))
	return response, nil
}

// newRecord computes how far a search has moved through the candidates of its length
func newRecord(start, current string) Record {
	rec := Record{StartingPassword: start, CurrentPassword: current}
	if len(start) != len(current) {
		return rec
	}
	_, rec.Exhausted = services.NextCandidate(current)

	// share of the candidates from start to the end of the keyspace already tested
	total := services.RemainingCandidates(start)
	total.Add(total, big.NewInt(1))
	done := new(big.Int).Sub(services.CandidateRank(current), services.CandidateRank(start))
	done.Add(done, big.NewInt(1))
	if done.Sign() <= 0 {
		return rec
	}
	ratio, _ := new(big.Rat).SetFrac(done, total).Float64()
	rec.Percent = ratio * 100
	return rec
}
