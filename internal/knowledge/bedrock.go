package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"sherpa/internal/config"
	"sherpa/internal/logger"
	"sherpa/pkg/metrics"
)

const promptTemplate = `あなたは社内ナレッジを検索して回答するアシスタントです。
以下の検索結果を元に、質問に日本語で簡潔に回答してください。

回答のルール:
1. 検索結果に該当する情報がある場合は、その情報を元に回答してください
2. 検索結果に該当する情報がない場合は「該当する情報が見つかりませんでした」と回答してください
3. 推測や一般的な知識での補完は最小限にしてください
4. 手順を説明する場合は、番号付きリストで分かりやすく記載してください

検索結果:
$search_results$

質問: $query$

回答:`

// BedrockAPI is the slice of the Bedrock agent runtime client the retriever
// uses.
type BedrockAPI interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// BedrockRetriever queries an AWS Bedrock knowledge base with retrieval
// augmented generation.
type BedrockRetriever struct {
	client BedrockAPI
	cfg    config.KnowledgeConfig
	logger logger.Logger
}

func NewBedrockRetriever(client BedrockAPI, cfg config.KnowledgeConfig, log logger.Logger) *BedrockRetriever {
	return &BedrockRetriever{client: client, cfg: cfg, logger: log}
}

func (r *BedrockRetriever) Retrieve(ctx context.Context, query string) (Answer, error) {
	start := time.Now()

	out, err := r.client.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &bedrocktypes.RetrieveAndGenerateInput{
			Text: aws.String(query),
		},
		RetrieveAndGenerateConfiguration: &bedrocktypes.RetrieveAndGenerateConfiguration{
			Type: bedrocktypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &bedrocktypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(r.cfg.KnowledgeBaseID),
				ModelArn:        aws.String(r.cfg.ModelARN),
				GenerationConfiguration: &bedrocktypes.GenerationConfiguration{
					PromptTemplate: &bedrocktypes.PromptTemplate{
						TextPromptTemplate: aws.String(promptTemplate),
					},
				},
			},
		},
	})
	if err != nil {
		metrics.ObserveKnowledgeQuery(time.Since(start), "error")
		return Answer{}, fmt.Errorf("knowledge base query failed: %w", err)
	}
	metrics.ObserveKnowledgeQuery(time.Since(start), "ok")

	answer := Answer{
		Sources: extractSources(out.Citations),
	}
	if out.Output != nil {
		answer.Text = aws.ToString(out.Output.Text)
	}

	return answer, nil
}

// extractSources derives the unique citation filenames, in first-seen order,
// from the S3 URIs of the retrieved references. Empty filenames are skipped.
func extractSources(citations []bedrocktypes.Citation) []string {
	var sources []string
	seen := make(map[string]bool)

	for _, citation := range citations {
		for _, reference := range citation.RetrievedReferences {
			if reference.Location == nil || reference.Location.S3Location == nil {
				continue
			}

			uri := aws.ToString(reference.Location.S3Location.Uri)
			filename := lastPathSegment(uri)
			if filename == "" || seen[filename] {
				continue
			}

			seen[filename] = true
			sources = append(sources, filename)
		}
	}

	return sources
}

func lastPathSegment(uri string) string {
	if uri == "" {
		return ""
	}
	parts := strings.Split(uri, "/")
	return parts[len(parts)-1]
}
