package alerts

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
	"github.com/lunaetstella/smartstock-backend/pkg/mailer"
)

type staticAdminSource struct {
	admins []models.User
	err    error
}

func (s *staticAdminSource) ListAdminsWithEmail(context.Context) ([]models.User, error) {
	return s.admins, s.err
}

type captureMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (c *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureMailer) sent() []mailer.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mailer.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func adminWithEmail(email string) models.User {
	return models.User{
		Username:     email,
		Email:        &email,
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
		Status:       models.UserStatusApproved,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func lowProduct() models.Product {
	return models.Product{
		SKU:               "A1",
		Name:              "Widget",
		StockQuantity:     7,
		MinStockThreshold: 10,
	}
}

func buildDispatcher(t *testing.T, admins *staticAdminSource, mail mailer.Mailer) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Config: config.AlertsConfig{Workers: 2, QueueSize: 8},
		Admins: admins,
		Mailer: mail,
		Logger: testLogger(),
	})
	require.NoError(t, err)
	return d
}

func TestDispatcherSendsToEveryAdmin(t *testing.T) {
	admins := &staticAdminSource{admins: []models.User{
		adminWithEmail("one@example.com"),
		adminWithEmail("two@example.com"),
	}}
	mail := &captureMailer{}

	d := buildDispatcher(t, admins, mail)
	d.Start()
	d.NotifyLowStock(lowProduct())
	d.Close()

	sent := mail.sent()
	require.Len(t, sent, 2)

	recipients := []string{sent[0].To, sent[1].To}
	sort.Strings(recipients)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, recipients)

	assert.Equal(t, "URGENT: Low Stock Report - Widget", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Product Name : Widget")
	assert.Contains(t, sent[0].Body, "SKU          : A1")
	assert.Contains(t, sent[0].Body, "Current Stock: 7 (Below Limit)")
	assert.Contains(t, sent[0].Body, "Min Threshold: 10")
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	admins := &staticAdminSource{admins: []models.User{adminWithEmail("one@example.com")}}
	mail := &captureMailer{err: fmt.Errorf("smtp unreachable")}

	d := buildDispatcher(t, admins, mail)
	d.Start()

	// Must never panic or surface the failure to the caller.
	d.NotifyLowStock(lowProduct())
	d.Close()

	assert.Empty(t, mail.sent())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	admins := &staticAdminSource{admins: []models.User{adminWithEmail("one@example.com")}}
	mail := &captureMailer{}

	d, err := NewDispatcher(DispatcherParams{
		Config: config.AlertsConfig{Workers: 1, QueueSize: 1},
		Admins: admins,
		Mailer: mail,
		Logger: testLogger(),
	})
	require.NoError(t, err)

	// Workers never started, so the second notification finds a full queue
	// and is dropped without blocking.
	d.NotifyLowStock(lowProduct())
	d.NotifyLowStock(lowProduct())
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	admins := &staticAdminSource{admins: nil}
	mail := &captureMailer{}

	d := buildDispatcher(t, admins, mail)
	d.Start()
	d.Close()
	d.Close()
}
