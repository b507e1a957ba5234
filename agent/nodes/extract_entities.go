package nodes

import (
	"fmt"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	entityx "github.com/weiheng-lim/kopibot/agent/entity"
)

func ExtractEntities(in *GraphState, extractor *entityx.Extractor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Entities = extractor.Extract(in.Text)
	return in, nil
}
