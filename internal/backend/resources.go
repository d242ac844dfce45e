package backend

import (
	"context"
	"fmt"

	"github.com/nhle/pmwatch/internal/model"
)

// FetchNotifications lists the signed-in user's notifications.
func (c *Client) FetchNotifications(ctx context.Context) ([]model.Notification, error) {
	var items []model.Notification
	if err := c.GetJSON(ctx, c.notificationsPath, &items); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return items, nil
}

// FetchRows lists any tabular resource (members, tasks, projects) as
// generic rows. The endpoint must return a JSON array of objects.
func (c *Client) FetchRows(ctx context.Context, path string) ([]model.Row, error) {
	var rows []model.Row
	if err := c.GetJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("fetching rows from %s: %w", path, err)
	}
	return rows, nil
}
