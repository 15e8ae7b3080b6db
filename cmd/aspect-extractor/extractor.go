package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/theimaginaryfoundation/reddit-absa/dataset"
	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
	"github.com/theimaginaryfoundation/reddit-absa/dataset/provider"
)

type aspectResponse struct {
	Aspects []string `json:"aspects"`
}

var aspectSchema = provider.MustSchema[aspectResponse]()

// openAIAspectExtractor asks a model for aspect terms and falls back to another
// extractor when the model output cannot be decoded.
type openAIAspectExtractor struct {
	responder provider.Responder
	model     string
	retry     provider.RetryPolicy
	fallback  dataset.CandidateExtractor
	log       *slog.Logger

	fallbacks int
}

func (e *openAIAspectExtractor) Candidates(ctx context.Context, sentence string) ([]string, error) {
	if e.responder == nil {
		return nil, errors.New("openAIAspectExtractor: responder is nil")
	}
	if e.model == "" {
		return nil, errors.New("openAIAspectExtractor: model is empty")
	}

	params := responses.ResponseNewParams{
		Model:           e.model,
		MaxOutputTokens: openai.Int(400),
		Instructions:    openai.String(aspectExtractionPrompt),
		ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(sentence, responses.EasyInputMessageRoleUser),
			},
		},
		Text: provider.JSONSchemaFormat("AspectTerms", "Aspect terms mentioned in the sentence", aspectSchema),
	}

	resp, err := provider.CallWithRetry(ctx, e.responder, params, e.retry)
	if err != nil {
		return nil, err
	}

	text := resp.OutputText()
	var out aspectResponse
	if err := fileutils.DecodeModelJSON(text, &out); err != nil {
		e.fallbacks++
		if e.log != nil {
			e.log.Warn("undecodable model output; using fallback extractor",
				"reason", "model_output", "err", err, "model_output_prefix", fileutils.Truncate(text, 200))
		}
		if e.fallback == nil {
			return nil, nil
		}
		return e.fallback.Candidates(ctx, sentence)
	}
	return out.Aspects, nil
}
