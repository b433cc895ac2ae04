package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
	"github.com/lunaetstella/smartstock-backend/pkg/mailer"
	"github.com/lunaetstella/smartstock-backend/pkg/metrics"
)

// AdminSource resolves the recipients for low-stock notifications.
type AdminSource interface {
	ListAdminsWithEmail(ctx context.Context) ([]models.User, error)
}

// Dispatcher fans low-stock notifications out to admin recipients from a
// bounded worker pool. Enqueueing never blocks the caller; when the queue is
// full the notification is dropped and counted.
type Dispatcher struct {
	queue   chan models.Product
	admins  AdminSource
	mail    mailer.Mailer
	logg    *logger.Logger
	metrics *metrics.AlertMetrics
	workers int
	timeout time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// DispatcherParams wires the dependencies for the dispatcher.
type DispatcherParams struct {
	Config  config.AlertsConfig
	Admins  AdminSource
	Mailer  mailer.Mailer
	Logger  *logger.Logger
	Metrics *metrics.AlertMetrics
	Timeout time.Duration
}

// NewDispatcher constructs a dispatcher. Call Start before notifying and
// Close on shutdown to drain the queue.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Admins == nil {
		return nil, fmt.Errorf("admin source required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	workers := params.Config.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := params.Config.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		queue:   make(chan models.Product, queueSize),
		admins:  params.Admins,
		mail:    params.Mailer,
		logg:    params.Logger,
		metrics: params.Metrics,
		workers: workers,
		timeout: timeout,
	}, nil
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for product := range d.queue {
				d.dispatch(product)
			}
		}()
	}
}

// Close stops accepting notifications and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

// NotifyLowStock enqueues the post-mutation product state for delivery.
// Never blocks; drops the notification when the queue is full.
func (d *Dispatcher) NotifyLowStock(product models.Product) {
	select {
	case d.queue <- product:
		d.metrics.IncEnqueued()
	default:
		d.metrics.IncDropped()
		ctx := d.logg.WithField(context.Background(), "product_sku", product.SKU)
		d.logg.Warn(ctx, "alert queue full, notification dropped")
	}
}

func (d *Dispatcher) dispatch(product models.Product) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	ctx = d.logg.WithField(ctx, "product_sku", product.SKU)

	admins, err := d.admins.ListAdminsWithEmail(ctx)
	if err != nil {
		d.metrics.IncFailed()
		d.logg.Error(ctx, "failed to resolve alert recipients", err)
		return
	}
	if len(admins) == 0 {
		d.logg.Warn(ctx, "no admin recipients for low stock alert")
		return
	}

	msg := composeMessage(product)
	var sendErr error
	for _, admin := range admins {
		msg.To = *admin.Email
		if err := d.mail.Send(ctx, msg); err != nil {
			d.metrics.IncFailed()
			sendErr = multierr.Append(sendErr, fmt.Errorf("send to %s: %w", msg.To, err))
			continue
		}
		d.metrics.IncSent()
	}
	if sendErr != nil {
		d.logg.Error(ctx, "low stock alert delivery incomplete", sendErr)
		return
	}
	ctx = d.logg.WithField(ctx, "recipients", len(admins))
	d.logg.Info(ctx, "low stock alert delivered")
}

func composeMessage(product models.Product) mailer.Message {
	subject := fmt.Sprintf("URGENT: Low Stock Report - %s", product.Name)
	body := fmt.Sprintf(
		"LOW STOCK REPORT\n"+
			"--------------------------------------------------\n"+
			"Product Name : %s\n"+
			"SKU          : %s\n"+
			"Current Stock: %d (Below Limit)\n"+
			"Min Threshold: %d\n"+
			"--------------------------------------------------\n\n"+
			"STATUS: CRITICAL ACTION REQUIRED\n"+
			"Immediate action is required to restock this item and prevent stock-outs.\n",
		product.Name, product.SKU, product.StockQuantity, product.MinStockThreshold,
	)
	return mailer.Message{Subject: subject, Body: body}
}
