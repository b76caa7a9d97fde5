// Package aggregate assembles denormalized clients from flat table rows.
//
// The pure part (All, Assemble, Marketing) never does I/O. Loader feeds it
// from the repositories, either in bulk or for a single client.
package aggregate

import (
	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
)

// Snapshot is one consistent read of the related tables.
type Snapshot struct {
	Clients    []models.ClientRow
	Tags       []models.TagRow
	ClientTags []models.ClientTagRow
	Tasks      []models.TaskRow
	History    []models.ServiceHistoryRow
}

// Stats counts relation rows dropped because their client or tag was not
// in the snapshot.
type Stats struct {
	SkippedClientTags int
	SkippedTasks      int
	SkippedHistory    int
}

func (s Stats) Skipped() int {
	return s.SkippedClientTags + s.SkippedTasks + s.SkippedHistory
}

// All returns one client per client row, in input order, with tags, tasks
// and service history attached.
func All(s Snapshot) []models.Client {
	clients, _ := Assemble(s)
	return clients
}

// Assemble is All plus counts of what was skipped.
func Assemble(s Snapshot) ([]models.Client, Stats) {
	var stats Stats

	// clients is never resized after this point, so pointers into it stay valid.
	clients := make([]models.Client, len(s.Clients))
	byID := make(map[uuid.UUID]*models.Client, len(s.Clients))
	for i, row := range s.Clients {
		clients[i] = ConvertClient(row)
		if _, seen := byID[row.ID]; !seen {
			byID[row.ID] = &clients[i]
		}
	}

	tags := make(map[uuid.UUID]models.Tag, len(s.Tags))
	for _, row := range s.Tags {
		tags[row.ID] = ConvertTag(row)
	}

	attached := make(map[models.ClientTagRow]struct{}, len(s.ClientTags))
	for _, ct := range s.ClientTags {
		client, ok := byID[ct.ClientID]
		if !ok {
			stats.SkippedClientTags++
			continue
		}
		tag, ok := tags[ct.TagID]
		if !ok {
			stats.SkippedClientTags++
			continue
		}
		if _, dup := attached[ct]; dup {
			continue
		}
		attached[ct] = struct{}{}
		client.Tags = append(client.Tags, tag)
	}

	for _, row := range s.Tasks {
		client, ok := byID[row.ClientID]
		if !ok {
			stats.SkippedTasks++
			continue
		}
		client.Tasks = append(client.Tasks, ConvertTask(row))
	}

	for _, row := range s.History {
		client, ok := byID[row.ClientID]
		if !ok {
			stats.SkippedHistory++
			continue
		}
		client.ServiceHistory = append(client.ServiceHistory, ConvertServiceHistory(row))
	}

	return clients, stats
}

// Marketing joins marketing rows with their client and the client's tags.
// Tasks and service history are not loaded for this view and stay empty.
func Marketing(messages []models.MarketingMessageRow, clients []models.ClientRow, tags []models.TagRow, clientTags []models.ClientTagRow) []models.MarketingMessage {
	aggregated := All(Snapshot{Clients: clients, Tags: tags, ClientTags: clientTags})
	byID := make(map[uuid.UUID]*models.Client, len(aggregated))
	for i := range aggregated {
		byID[aggregated[i].ID] = &aggregated[i]
	}

	out := make([]models.MarketingMessage, 0, len(messages))
	for _, row := range messages {
		msg := models.MarketingMessage{
			ID:        row.ID,
			ClientID:  row.ClientID,
			FirstName: row.FirstName,
			Phone:     row.Phone,
			Message:   row.Message,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			Tags:      []models.Tag{},
		}
		if client, ok := byID[row.ClientID]; ok {
			msg.Client = client
			msg.Tags = client.Tags
		}
		out = append(out, msg)
	}
	return out
}
