package turnnode

import (
	"context"
	"fmt"

	"github.com/mousaid/car-sales-agent/agent/contract"
)

// FinalizeReply terminates the short-circuited branch: the reply was decided
// and recorded upstream, so this only shapes the output.
func FinalizeReply(_ context.Context, in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = contract.StatusOK
	}
	return GraphOutput{Reply: in.Reply, Status: status}, nil
}
