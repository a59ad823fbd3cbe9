package sqsutil

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSQS struct {
	mock.Mock
}

func (m *MockSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQS) DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageBatchOutput), args.Error(1)
}

func (m *MockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

const queueURL = "https://sqs.ap-south-1.amazonaws.com/000000000000/reminder-triggers"

func TestReceiveMessageLongPolls(t *testing.T) {
	client := new(MockSQS)
	client.On("ReceiveMessage", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return aws.ToString(in.QueueUrl) == queueURL && in.MaxNumberOfMessages == 10 && in.WaitTimeSeconds == 20
	})).Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{{MessageId: aws.String("m1")}}}, nil)

	msgs, err := ReceiveMessage(context.Background(), client, queueURL)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestDeleteMessageBatchSkipsEmpty(t *testing.T) {
	client := new(MockSQS)
	require.NoError(t, DeleteMessageBatch(context.Background(), client, queueURL, nil, zap.NewNop()))
	client.AssertNotCalled(t, "DeleteMessageBatch", mock.Anything, mock.Anything)
}

func TestDeleteMessageBatchToleratesPartialFailure(t *testing.T) {
	client := new(MockSQS)
	client.On("DeleteMessageBatch", mock.Anything, mock.Anything).Return(&sqs.DeleteMessageBatchOutput{
		Failed: []types.BatchResultErrorEntry{{Id: aws.String("m2"), Code: aws.String("ReceiptHandleIsInvalid")}},
	}, nil)

	entries := []types.DeleteMessageBatchRequestEntry{
		{Id: aws.String("m1"), ReceiptHandle: aws.String("rh1")},
		{Id: aws.String("m2"), ReceiptHandle: aws.String("rh2")},
	}
	assert.NoError(t, DeleteMessageBatch(context.Background(), client, queueURL, entries, zap.NewNop()))
}

func TestDeleteMessageBatchError(t *testing.T) {
	client := new(MockSQS)
	client.On("DeleteMessageBatch", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	entries := []types.DeleteMessageBatchRequestEntry{{Id: aws.String("m1"), ReceiptHandle: aws.String("rh1")}}
	assert.Error(t, DeleteMessageBatch(context.Background(), client, queueURL, entries, zap.NewNop()))
}

func TestSendJSON(t *testing.T) {
	client := new(MockSQS)
	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == queueURL && aws.ToString(in.MessageBody) == `{"sweep":"medication"}`
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("abc")}, nil)

	id, err := SendJSON(context.Background(), client, queueURL, map[string]string{"sweep": "medication"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}
