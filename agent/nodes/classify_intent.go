package nodes

import (
	"fmt"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
	intentx "github.com/weiheng-lim/kopibot/agent/intent"
)

func ClassifyIntent(in *GraphState, classifier *intentx.Classifier) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.Intent = classifier.Classify(intentx.Input{
		Text:     in.Text,
		Entities: in.Entities,
		Session:  in.Session,
	})
	return in, nil
}
