package sync

import "time"

const (
	EventCollectionOwned   = "collection.owned"
	EventCollectionMissing = "collection.missing"
	EventCollectionUpdate  = "collection.update"
	EventCollectionDelete  = "collection.delete"
	EventFavoriteAdd       = "favorites.add"
	EventFavoriteRemove    = "favorites.remove"
	EventWishlistAdd       = "wishlist.add"
	EventWishlistRemove    = "wishlist.remove"
	EventCardsRefreshed    = "cards.refreshed"
)

// Event is pushed to websocket clients after a write. Events with an empty
// UserID go to every client.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	CardID    string    `json:"card_id,omitempty"`
	Character string    `json:"character,omitempty"`
	Owned     *bool     `json:"owned,omitempty"`
	Count     int       `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

func NewEvent(typ, userID string) Event {
	return Event{Type: typ, UserID: userID, At: time.Now().UTC()}
}
