package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox/idempotency"
)

const projectNotificationConsumer = "project-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type assignmentLoader interface {
	ListAssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Consumer watches domain events and turns project lifecycle transitions into
// in-app notifications for the assigned users.
type Consumer struct {
	repo         repository
	assignments  assignmentLoader
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a project notification consumer.
func NewConsumer(repo repository, assignments assignmentLoader, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if assignments == nil {
		return nil, fmt.Errorf("assignment loader required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		assignments:  assignments,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if eventType != string(enums.EventUserAssigned) && eventType != string(enums.EventProjectCompleted) {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, projectNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, enums.OutboxEventType(eventType), envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, projectNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventUserAssigned:
		var payload outbox.UserAssignedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyAssignment(ctx, payload, logCtx)
	case enums.EventProjectCompleted:
		var payload outbox.ProjectCompletedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyCompletion(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) notifyAssignment(ctx context.Context, payload outbox.UserAssignedPayload, logCtx context.Context) error {
	if payload.UserID == uuid.Nil || payload.ProjectID == uuid.Nil {
		return fmt.Errorf("user or project id missing")
	}
	projectID := payload.ProjectID
	notification := &models.Notification{
		UserID:    payload.UserID,
		Type:      enums.NotificationTypeProjectAssigned,
		Title:     "Assigned to project",
		Message:   fmt.Sprintf("You have been assigned to project %s.", projectID),
		ProjectID: &projectID,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "user notified of project assignment")
	return nil
}

func (c *Consumer) notifyCompletion(ctx context.Context, payload outbox.ProjectCompletedPayload, logCtx context.Context) error {
	if payload.ProjectID == uuid.Nil {
		return fmt.Errorf("project id missing")
	}
	userIDs, err := c.assignments.ListAssignedUserIDs(ctx, payload.ProjectID)
	if err != nil {
		return err
	}
	projectID := payload.ProjectID
	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:    userID,
			Type:      enums.NotificationTypeProjectCompleted,
			Title:     "Project completed",
			Message:   fmt.Sprintf("Project %s has been completed with a grand total of %s.", projectID, payload.GrandTotal.StringFixed(2)),
			ProjectID: &projectID,
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	c.logg.Info(logCtx, "assigned users notified of completion")
	return nil
}
