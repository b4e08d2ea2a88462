package adapter

type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a transient, dismissible user-facing message.
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}
