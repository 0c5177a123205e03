package llmservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

const contentTypeJSON = "application/json"

// RuntimeAPI is the part of the Bedrock runtime client used for invocation
type RuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type invokeRequest struct {
	Input string `json:"input"`
}

type invokeResponse struct {
	Output *string `json:"output"`
}

// NewRuntimeClient builds a Bedrock runtime client for the configured region.
// Credentials are resolved up front so that a bad setup fails here rather
// than on the first call.
func NewRuntimeClient(ctx context.Context, awsCfg *config.AWSConfig) (*bedrockruntime.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}
	if awsCfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(awsCfg.Profile))
	}
	if awsCfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, awsCfg.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load aws config: %w", models.ErrAuth, err)
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("%w: no aws credentials configured", models.ErrAuth)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve aws credentials: %w", models.ErrAuth, err)
	}

	log.Debug().Str("region", awsCfg.Region).Str("endpoint", awsCfg.Endpoint).Msg("Created bedrock runtime client")

	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if awsCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
		}
	}), nil
}

// BedrockClient invokes models with a {"input": ...} body and reads the
// "output" field of the response
type BedrockClient struct {
	runtime RuntimeAPI
}

func NewBedrockClient(runtime RuntimeAPI) *BedrockClient {
	return &BedrockClient{runtime: runtime}
}

func (c *BedrockClient) Invoke(ctx context.Context, modelID, text string) (string, error) {
	body, err := json.Marshal(invokeRequest{Input: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to invoke model %s: %w", models.ErrService, modelID, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response from model %s", models.ErrMalformedResponse, modelID)
	}

	var result invokeResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", models.ErrMalformedResponse, err)
	}
	if result.Output == nil {
		return "", fmt.Errorf("%w: response has no output field", models.ErrMalformedResponse)
	}
	return *result.Output, nil
}
