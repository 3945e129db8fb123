package realtime

import (
	"encoding/json"
	"log"
)

// Broadcaster serializes an event once and fans it out to every subscriber of
// a chat. A write failure on one connection never blocks the others and never
// surfaces to the caller: the stale connection is logged and deregistered.
type Broadcaster struct {
	reg *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Broadcast delivers ev to every live subscriber of chatID. A chat with no
// live viewers is a no-op, not an error.
func (b *Broadcaster) Broadcast(chatID string, ev Event) {
	conns := b.reg.Subscribers(chatID)
	if len(conns) == 0 {
		return
	}
	b.SendTo(conns, ev)
}

// SendTo delivers ev to an explicit connection list. Used on chat deletion,
// where the subscriber set has already been dropped from the registry.
func (b *Broadcaster) SendTo(conns []Conn, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[broadcast] marshal %s: %v", ev.Type, err)
		return
	}
	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			log.Printf("[broadcast] write to user %d failed, dropping connection: %v", c.UserID(), err)
			b.reg.Deregister(c)
		}
	}
}
