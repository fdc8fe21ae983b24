package services

import (
	"fmt"

	pubnub "github.com/pubnub/go"
)

const marketplaceChannel = "marketplace"

// Notifier pushes realtime marketplace events over PubNub. A nil client
// turns every publish into a no-op, which is what tests and minimal deploys
// run with.
type Notifier struct {
	PubNub *pubnub.PubNub
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{PubNub: pn}
}

// NotifyUser publishes to the per-user channel, e.g. a seller learning their
// ticket sold.
func (n *Notifier) NotifyUser(username string, message map[string]any) {
	if n == nil || n.PubNub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", username)
	n.PubNub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}

// NotifyMarketplace publishes a listing change to the shared marketplace
// channel so browsing clients can refresh.
func (n *Notifier) NotifyMarketplace(message map[string]any) {
	if n == nil || n.PubNub == nil {
		return
	}

	n.PubNub.Publish().
		Channel(marketplaceChannel).
		Message(message).
		Execute()
}
