package service

// Feed snapshots are pushed to subscribers whenever a feed is assembled for
// their user. Delivery is latest-wins: a slow subscriber has its stale
// snapshot replaced rather than blocking the publisher.

// Subscribe registers for feed snapshots for the given user. The returned
// cancel func must be called when the subscriber loses interest; it closes
// the channel.
func (s *MealService) Subscribe(userID string) (<-chan []FeedItem, func()) {
	ch := make(chan []FeedItem, 1)

	s.subMu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[chan []FeedItem]struct{})
	}
	s.subs[userID][ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if set, ok := s.subs[userID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(s.subs, userID)
			}
		}
	}
	return ch, cancel
}

func (s *MealService) publish(userID string, feed []FeedItem) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs[userID] {
		select {
		case ch <- feed:
		default:
			// Drop the stale snapshot and push the fresh one.
			select {
			case <-ch:
			default:
			}
			ch <- feed
		}
	}
}
