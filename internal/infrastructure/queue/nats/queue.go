package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

// workerGroup is the queue group shared by every worker. NATS delivers each
// batch to exactly one member.
const workerGroup = "item-name-workers"

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("dinelog"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishItemNameBatch(ctx context.Context, batch domain.ItemNameBatch) error {
	payload, err := encodeBatch(batch)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapPublishError(err)
	}
	return nil
}

// SubscribeItemNameBatches blocks until ctx is cancelled, then drains the
// subscription and waits for the batches already delivered to finish. A
// subscription handles one message at a time, so a worker appends to the
// corpus in delivery order.
func (q *Queue) SubscribeItemNameBatches(ctx context.Context, handler func(context.Context, domain.ItemNameBatch) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(msg *nats.Msg) {
		dispatch(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := waitDrained(sub, drainTimeout); err != nil {
		return err
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

const drainTimeout = 30 * time.Second

func waitDrained(sub *nats.Subscription, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			pending, _, _ := sub.Pending()
			slog.Warn("item_name_batches_dropped", "pending", pending)
			return fmt.Errorf("nats drain: timed out with %d batches pending", pending)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

// dispatch detaches the handler from ctx cancellation: a batch delivered
// during shutdown drain still runs to completion.
func dispatch(ctx context.Context, data []byte, handler func(context.Context, domain.ItemNameBatch) error) {
	batch, err := decodeBatch(data)
	if err != nil {
		slog.Error("item_name_batch_decode_failed", "error", err, "bytes", len(data))
		return
	}

	handlerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	if err := handler(handlerCtx, batch); err != nil {
		slog.Error("item_name_batch_failed",
			"review_id", batch.ReviewID,
			"names", len(batch.Names),
			"error", err,
		)
	}
}

func encodeBatch(batch domain.ItemNameBatch) ([]byte, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal item name batch: %w", err)
	}
	return payload, nil
}

func decodeBatch(data []byte) (domain.ItemNameBatch, error) {
	var batch domain.ItemNameBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return domain.ItemNameBatch{}, fmt.Errorf("decode item name batch: %w", err)
	}
	if len(batch.Names) == 0 {
		return domain.ItemNameBatch{}, fmt.Errorf("decode item name batch: no names")
	}
	return batch, nil
}
