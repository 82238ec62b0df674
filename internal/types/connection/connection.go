package connection

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Connection is one edge of the connection graph, denormalized with both
// parties' display fields for cheap rendering.
type Connection struct {
	ID               string    `json:"id"`
	RequesterID      string    `json:"requesterId"`
	RequesterName    string    `json:"requesterName"`
	RequesterPhoto   string    `json:"requesterPhoto,omitempty"`
	RequesterRole    string    `json:"requesterRole,omitempty"`
	RequesterCompany string    `json:"requesterCompany,omitempty"`
	RecipientID      string    `json:"recipientId"`
	RecipientName    string    `json:"recipientName"`
	RecipientPhoto   string    `json:"recipientPhoto,omitempty"`
	RecipientRole    string    `json:"recipientRole,omitempty"`
	RecipientCompany string    `json:"recipientCompany,omitempty"`
	Status           string    `json:"status"`
	Message          string    `json:"message,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	RespondedAt      time.Time `json:"respondedAt,omitempty"`
}

func FromDoc(id string, data map[string]any) *Connection {
	c := &Connection{
		ID:               id,
		RequesterID:      docstore.Str(data, "requesterId"),
		RequesterName:    docstore.Str(data, "requesterName"),
		RequesterPhoto:   docstore.Str(data, "requesterPhoto"),
		RequesterRole:    docstore.Str(data, "requesterRole"),
		RequesterCompany: docstore.Str(data, "requesterCompany"),
		RecipientID:      docstore.Str(data, "recipientId"),
		RecipientName:    docstore.Str(data, "recipientName"),
		RecipientPhoto:   docstore.Str(data, "recipientPhoto"),
		RecipientRole:    docstore.Str(data, "recipientRole"),
		RecipientCompany: docstore.Str(data, "recipientCompany"),
		Status:           docstore.Str(data, "status"),
		Message:          docstore.Str(data, "message"),
		CreatedAt:        docstore.Time(data, "createdAt"),
		RespondedAt:      docstore.Time(data, "respondedAt"),
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return c
}

// OtherParty returns the id of the user on the far side of the edge.
func (c *Connection) OtherParty(userID string) string {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}
