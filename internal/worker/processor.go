package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"imagevault/config"
	"imagevault/internal/errs"
	"imagevault/internal/mq"
	"imagevault/internal/repo"
	"imagevault/internal/task"
	"imagevault/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type dlqMessage struct {
	JobID    uint64    `json:"job_id"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// Run consumes processing jobs from RabbitMQ, bounding concurrency
// with a semaphore and pacing dispatch with a rate limiter, mirroring
// the teacher's download worker loop almost verbatim in shape.
func Run(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(mq.QueueTasks, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	burst := config.AppConfig.WorkerBurst
	if burst <= 0 {
		burst = 1
	}
	rateLimit := config.AppConfig.WorkerRate
	var limiter *rate.Limiter
	if rateLimit <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("processor: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleMessage(ctx, client, limiter, d)
			}(delivery)
		}
	}
}

func handleMessage(ctx context.Context, client *mq.Client, limiter *rate.Limiter, delivery amqp.Delivery) {
	var msg task.ProcessingMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("processor: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			_ = delivery.Nack(false, true)
			return
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, config.AppConfig.JobTimeout)
	err := ProcessProcessingJob(attemptCtx, msg.JobID)
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if scheduleErr := scheduleRetry(ctx, client, msg, errs.New(errs.ProcessingTimeout, "processing attempt timed out")); scheduleErr != nil {
				log.Printf("processor: retry schedule failed: %v", scheduleErr)
				_ = delivery.Nack(false, true)
				return
			}
			_ = delivery.Ack(false)
			return
		}
		if shouldRetry(err) {
			if scheduleErr := scheduleRetry(ctx, client, msg, err); scheduleErr != nil {
				log.Printf("processor: retry schedule failed: %v", scheduleErr)
				_ = delivery.Nack(false, true)
				return
			}
		} else {
			if failErr := markFailed(ctx, client, msg, err); failErr != nil {
				log.Printf("processor: mark failed failed: %v", failErr)
				_ = delivery.Nack(false, true)
				return
			}
		}
	}

	_ = delivery.Ack(false)
}

func shouldRetry(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if kind, ok := errs.KindOf(err); ok {
		switch kind {
		case errs.ValidationFailed, errs.NotFound, errs.InconsistentState:
			return false
		}
	}
	return true
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg task.ProcessingMessage, procErr error) error {
	maxTries := config.AppConfig.JobTries
	if maxTries < 0 {
		maxTries = 0
	}
	nextAttempt := msg.Attempt + 1
	if maxTries == 0 || nextAttempt >= maxTries {
		return markFailed(ctx, client, msg, procErr)
	}

	delay := pickRetryDelay(nextAttempt, config.AppConfig.RetryDelays)
	if err := repo.Db.Model(&model.ProcessingJob{}).
		Where("id = ?", msg.JobID).
		Updates(map[string]interface{}{
			"status":     model.JobFailed,
			"last_error": procErr.Error(),
		}).Error; err != nil {
		return err
	}

	msg.Attempt = nextAttempt
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return client.PublishRetry(ctx, body, delay)
}

func markFailed(ctx context.Context, client *mq.Client, msg task.ProcessingMessage, procErr error) error {
	finishedAt := time.Now()
	if err := repo.Db.Model(&model.ProcessingJob{}).
		Where("id = ?", msg.JobID).
		Updates(map[string]interface{}{
			"status":      model.JobFailed,
			"last_error":  procErr.Error(),
			"finished_at": &finishedAt,
		}).Error; err != nil {
		return err
	}
	var job model.ProcessingJob
	if err := repo.Db.Select("upload_id").Where("id = ?", msg.JobID).First(&job).Error; err != nil {
		log.Printf("processor: load job for upload failure: %v", err)
	} else if err := repo.Db.Model(&model.Upload{}).
		Where("id = ?", job.UploadID).
		Update("status", model.StatusFailed).Error; err != nil {
		log.Printf("processor: mark upload failed: %v", err)
	}

	dlq := dlqMessage{JobID: msg.JobID, Attempt: msg.Attempt, Error: procErr.Error(), FailedAt: finishedAt}
	body, err := json.Marshal(dlq)
	if err != nil {
		return err
	}
	if err := client.PublishDLQ(ctx, body); err != nil {
		log.Printf("processor: dlq publish failed: %v", err)
	}
	return nil
}

func pickRetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
