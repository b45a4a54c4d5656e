package domain

import (
	"errors"
	"time"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientNameEmpty    = errors.New("client name is required")
	ErrClientNameTooLong  = errors.New("client name must be 200 characters or less")
	ErrClientPhoneMissing = errors.New("client has no phone number")
)

// Client is a store customer. Clients are only ever soft-deleted so that
// debts and sales keep a valid owner.
type Client struct {
	ID       int32   `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	WhatsApp bool    `json:"whatsapp"`
	Address  *string `json:"address,omitempty"`

	// LastReminderMonth marks the invoice month of the most recent
	// reminder sent to this client. Updated best-effort after a send.
	LastReminderMonth *time.Time `json:"lastReminderMonth,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func (c *Client) Validate() error {
	if c.Name == "" {
		return ErrClientNameEmpty
	}
	if len(c.Name) > MaxNameLength {
		return ErrClientNameTooLong
	}
	return nil
}

// CanNotify reports whether the client can receive WhatsApp messages.
func (c *Client) CanNotify() bool {
	return c.WhatsApp && c.Phone != ""
}

type ClientRepository interface {
	Create(client *Client) (*Client, error)
	GetByID(id int32) (*Client, error)
	GetAll() ([]*Client, error)
	Update(client *Client) (*Client, error)
	SoftDelete(id int32) error
	SetLastReminderMonth(id int32, month time.Time) error
}
