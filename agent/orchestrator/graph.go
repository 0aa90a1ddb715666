package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/mousaid/car-sales-agent/agent/contract"
	turnnode "github.com/mousaid/car-sales-agent/agent/nodes"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput], error) {
	graph := compose.NewGraph[turnnode.GraphInput, turnnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in turnnode.GraphInput) (*turnnode.GraphState, error) {
			return turnnode.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_state",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.LoadState(ctx, in, o.profiles, o.transcripts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_state: %w", err)
	}

	if err := graph.AddLambdaNode("record_input",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.RecordInput(ctx, in, o.transcripts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_input: %w", err)
	}

	if err := graph.AddLambdaNode("extract_and_merge",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ExtractAndMerge(ctx, in, o.extractor, o.profiles)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_and_merge: %w", err)
	}

	if err := graph.AddLambdaNode("refresh_catalog",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.RefreshCatalog(ctx, in, o.cars, o.profiles)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node refresh_catalog: %w", err)
	}

	if err := graph.AddLambdaNode("short_circuit",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ShortCircuit(ctx, in, o.profiles, o.transcripts, o.dispatchConfirmation)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node short_circuit: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.FinalizeReply(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	if err := graph.AddLambdaNode("generate_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.GenerateReply(ctx, in, o.completer, o.transcripts, o.prompts.Responder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnnode.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.Done {
				return "finalize_reply", nil
			}
			return "generate_reply", nil
		},
		map[string]bool{
			"finalize_reply": true,
			"generate_reply": true,
		},
	)

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_state"},
		{"load_state", "record_input"},
		{"record_input", "extract_and_merge"},
		{"extract_and_merge", "refresh_catalog"},
		{"refresh_catalog", "short_circuit"},
		{"finalize_reply", compose.END},
		{"generate_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}
	if err := graph.AddBranch("short_circuit", branch); err != nil {
		return nil, fmt.Errorf("add reply branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
