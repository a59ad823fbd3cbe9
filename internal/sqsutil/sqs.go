package sqsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// Client is the subset of *sqs.Client the queue helpers use.
type Client interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// ReceiveMessage long-polls queueURL for up to ten messages.
func ReceiveMessage(ctx context.Context, client Client, queueURL string) ([]types.Message, error) {
	result, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive message: %w", err)
	}
	return result.Messages, nil
}

// DeleteMessageBatch removes handled messages; partial failures are logged, not returned.
func DeleteMessageBatch(ctx context.Context, client Client, queueURL string, entries []types.DeleteMessageBatchRequestEntry, logger *zap.Logger) error {
	if len(entries) == 0 {
		return nil
	}

	result, err := client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(queueURL),
		Entries:  entries,
	})
	if err != nil {
		return fmt.Errorf("batch delete failed: %w", err)
	}

	for _, failure := range result.Failed {
		logger.Warn("SQS batch delete entry failed",
			zap.String("id", aws.ToString(failure.Id)),
			zap.String("code", aws.ToString(failure.Code)),
			zap.String("message", aws.ToString(failure.Message)))
	}
	logger.Debug("Deleted SQS messages", zap.Int("count", len(result.Successful)), zap.String("queue", queueURL))
	return nil
}

// Sender is the subset of *sqs.Client used to publish messages.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SendJSON marshals body and sends it to queueURL, returning the message ID.
func SendJSON(ctx context.Context, client Sender, queueURL string, body interface{}) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message body: %w", err)
	}

	out, err := client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
