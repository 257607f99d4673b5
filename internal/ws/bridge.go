package ws

import (
	"encoding/json"
	"log"

	"github.com/nidys-catering/api/internal/catalog"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"
)

// Bridge forwards store subscriptions onto hub topics so connected clients
// see the same live snapshots the in-process subscribers do.
type Bridge struct {
	unsubs []func()
}

// NewBridge wires the store's media, order history, and catalog document
// subscriptions to the hub. Call Close to detach.
func NewBridge(s store.Store, hub *Hub) *Bridge {
	b := &Bridge{}

	b.unsubs = append(b.unsubs, s.SubscribeMedia(func(snap store.MediaSnapshot, err error) {
		if err != nil {
			log.Printf("ERROR: media subscription: %v", err)
			return
		}
		b.publish(hub, TopicMedia, "media.snapshot", struct {
			Items    map[string]model.MediaItem `json:"items"`
			ImageMap map[string]string          `json:"imageMap"`
		}{Items: snap.Items, ImageMap: snap.ImageMap})
	}))

	b.unsubs = append(b.unsubs, s.SubscribeHistory(func(orders []model.SavedOrder, err error) {
		if err != nil {
			log.Printf("ERROR: order history subscription: %v", err)
			return
		}
		b.publish(hub, TopicOrders, "orders.snapshot", orders)
	}))

	for _, key := range []string{catalog.DocMenuData, catalog.DocAppTitle, catalog.DocThemes, catalog.DocActiveThemeID} {
		key := key
		b.unsubs = append(b.unsubs, s.SubscribeDoc(key, func(value json.RawMessage, err error) {
			if err != nil {
				log.Printf("ERROR: document subscription %q: %v", key, err)
				return
			}
			b.publish(hub, TopicCatalog, "catalog."+key, struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
			}{Key: key, Value: value})
		}))
	}

	return b
}

func (b *Bridge) publish(hub *Hub, topic, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	hub.Broadcast(topic, Event{Type: eventType, Payload: raw})
}

// Close detaches all store subscriptions.
func (b *Bridge) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}
