package bot

import (
	"github.com/samber/lo"

	"github.com/domino14/blockfish/ai"
	"github.com/domino14/blockfish/input"
)

// AnalysisRequest is the JSON body of a request on the bot channel. The
// snapshot fields follow the host convention: a one-letter hold (empty for
// none), the queue as a string, and the field row-major from the bottom,
// ten cells per row.
type AnalysisRequest struct {
	Hold  string `json:"hold"`
	Next  string `json:"next"`
	Field []bool `json:"field"`
	// MaxInputs truncates every suggestion's inputs; absent means no limit.
	MaxInputs *int `json:"max_inputs,omitempty"`
	// TopN keeps only the best suggestions when positive.
	TopN int `json:"top_n,omitempty"`
	// Config overrides the bot's configuration for this request.
	Config *ai.Config `json:"config,omitempty"`
}

type StatsReply struct {
	Iterations  uint64 `json:"iterations"`
	Nodes       uint64 `json:"nodes"`
	TimeTakenMs int64  `json:"time_taken_ms"`
}

type SuggestionReply struct {
	Rating int64 `json:"rating"`
	// Inputs uses the stable input ids (1 left ... 8 hold).
	Inputs []int `json:"inputs"`
}

// AnalysisResponse is the reply. Exactly one of Error or the result fields
// is meaningful. Suggestions are best first.
type AnalysisResponse struct {
	Error       string            `json:"error,omitempty"`
	Stats       *StatsReply       `json:"stats,omitempty"`
	Suggestions []SuggestionReply `json:"suggestions"`
}

func newAnalysisResponse(st *ai.Stats, sugs []ai.Suggestion) *AnalysisResponse {
	resp := &AnalysisResponse{
		Suggestions: lo.Map(sugs, func(s ai.Suggestion, _ int) SuggestionReply {
			return SuggestionReply{Rating: s.Rating, Inputs: input.Codes(s.Inputs)}
		}),
	}
	if st != nil {
		resp.Stats = &StatsReply{
			Iterations:  st.Iterations,
			Nodes:       st.Nodes,
			TimeTakenMs: st.TimeTaken.Milliseconds(),
		}
	}
	return resp
}

// DecodeInputs converts wire ids back into inputs.
func (s SuggestionReply) DecodeInputs() ([]input.Input, error) {
	ins := make([]input.Input, 0, len(s.Inputs))
	for _, code := range s.Inputs {
		in, err := input.FromCode(code)
		if err != nil {
			return nil, err
		}
		ins = append(ins, in)
	}
	return ins, nil
}
