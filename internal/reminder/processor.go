package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"ms-reminders/internal/models"
	"ms-reminders/internal/sqsutil"
)

// Runner runs one named sweep.
type Runner interface {
	Run(ctx context.Context, kind models.SweepKind, now time.Time) (SweepResult, error)
}

// Processor turns messages on the trigger queue into sweep runs.
type Processor struct {
	sqsClient sqsutil.Client
	queueURL  string
	runner    Runner
	logger    *zap.Logger
	now       func() time.Time
}

func NewProcessor(sqsClient sqsutil.Client, queueURL string, runner Runner, logger *zap.Logger) *Processor {
	return &Processor{
		sqsClient: sqsClient,
		queueURL:  queueURL,
		runner:    runner,
		logger:    logger.With(zap.String("component", "sqs-trigger")),
		now:       time.Now,
	}
}

// ProcessMessages polls the trigger queue until ctx is cancelled.
func (p *Processor) ProcessMessages(ctx context.Context) error {
	if p.queueURL == "" {
		return errors.New("reminder trigger queue URL not configured")
	}

	p.logger.Info("Starting to process sweep triggers", zap.String("queue", p.queueURL))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Context cancelled, stopping sweep trigger processor")
			return ctx.Err()
		default:
		}

		if err := p.processBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("Error receiving sweep triggers", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
		}
	}
}

// processBatch handles one receive. Messages whose sweep failed stay on the queue
// and become visible again for another attempt.
func (p *Processor) processBatch(ctx context.Context) error {
	rawMessages, err := sqsutil.ReceiveMessage(ctx, p.sqsClient, p.queueURL)
	if err != nil {
		return err
	}
	if len(rawMessages) == 0 {
		return nil
	}

	var messagesToDelete []types.DeleteMessageBatchRequestEntry
	for _, rawMessage := range rawMessages {
		entry := types.DeleteMessageBatchRequestEntry{
			Id:            rawMessage.MessageId,
			ReceiptHandle: rawMessage.ReceiptHandle,
		}

		var body models.SQSSweepTriggerMessageBody
		if rawMessage.Body == nil || json.Unmarshal([]byte(*rawMessage.Body), &body) != nil {
			p.logger.Warn("Malformed sweep trigger, deleting it")
			messagesToDelete = append(messagesToDelete, entry)
			continue
		}

		res, err := p.runner.Run(ctx, body.Sweep, p.now())
		switch {
		case errors.Is(err, ErrUnknownSweep):
			p.logger.Warn("Unknown sweep in trigger, deleting it", zap.String("sweep", string(body.Sweep)))
			messagesToDelete = append(messagesToDelete, entry)
		case err != nil:
			p.logger.Error("Sweep run failed, trigger will be retried", zap.String("sweep", string(body.Sweep)), zap.Error(err))
		default:
			p.logger.Info("Sweep trigger processed",
				zap.String("sweep", string(body.Sweep)),
				zap.Int("examined", res.Examined),
				zap.Int("created", res.Created))
			messagesToDelete = append(messagesToDelete, entry)
		}
	}

	if err := sqsutil.DeleteMessageBatch(ctx, p.sqsClient, p.queueURL, messagesToDelete, p.logger); err != nil {
		p.logger.Error("Error batch deleting sweep triggers", zap.Error(err))
	}
	return nil
}
