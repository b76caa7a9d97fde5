package aggregate

import "github.com/lalith-99/clientdesk/internal/models"

// Row → entity conversion. Everything that knows both the table shape and
// the domain shape lives in this file.

// ConvertClient builds a client with empty, non-nil relation slices.
func ConvertClient(r models.ClientRow) models.Client {
	return models.Client{
		ID:             r.ID,
		Name:           r.Name,
		Phone:          r.Phone,
		Source:         r.Source,
		Level:          models.Level(r.Level),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Tags:           []models.Tag{},
		Tasks:          []models.Task{},
		ServiceHistory: []models.ServiceHistory{},
	}
}

func ConvertTag(r models.TagRow) models.Tag {
	return models.Tag{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

func ConvertTask(r models.TaskRow) models.Task {
	t := models.Task{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
	}
	if r.DueDate != nil {
		due := *r.DueDate
		t.DueDate = &due
	}
	return t
}

func ConvertServiceHistory(r models.ServiceHistoryRow) models.ServiceHistory {
	return models.ServiceHistory{
		ID:           r.ID,
		ClientID:     r.ClientID,
		Date:         r.Date,
		Observations: r.Observations,
		CreatedAt:    r.CreatedAt,
	}
}

// ClientToRow is the inverse of ConvertClient, used when persisting.
func ClientToRow(c models.Client) models.ClientRow {
	return models.ClientRow{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Source:    c.Source,
		Level:     string(c.Level),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func TaskToRow(t models.Task) models.TaskRow {
	return models.TaskRow{
		ID:          t.ID,
		ClientID:    t.ClientID,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		DueDate:     t.DueDate,
	}
}

func ServiceHistoryToRow(h models.ServiceHistory) models.ServiceHistoryRow {
	return models.ServiceHistoryRow{
		ID:           h.ID,
		ClientID:     h.ClientID,
		Date:         h.Date,
		Observations: h.Observations,
		CreatedAt:    h.CreatedAt,
	}
}
