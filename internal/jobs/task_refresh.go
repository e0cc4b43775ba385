package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/catalog"
)

// RefreshHandler runs one catalog refresh unit. Not-found and
// not-refreshed are ordinary outcomes: the task completes and the bulk
// run moves on.
type RefreshHandler struct {
	service *catalog.Service
	logger  *logrus.Logger
}

func NewRefreshHandler(service *catalog.Service, logger *logrus.Logger) *RefreshHandler {
	return &RefreshHandler{service: service, logger: logger}
}

func (h *RefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload refreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	itemID, err := uuid.Parse(payload.ItemID)
	if err != nil {
		return fmt.Errorf("parse item id: %w", err)
	}

	item, err := h.service.Refresh(ctx, itemID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.logger.WithField("item_id", itemID).Warn("refresh task: item no longer exists")
		return nil
	case errors.Is(err, catalog.ErrNotRefreshed):
		h.logger.WithField("item_id", itemID).Info("refresh task: provider had nothing usable")
		return nil
	case err != nil:
		return fmt.Errorf("refresh %s: %w", itemID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"item_id": itemID,
		"title":   item.Title,
	}).Debug("refresh task completed")
	return nil
}
