package section

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	section *Section
	id      uint64
	fn      func([]Change)
}

// Subscribe registers fn to receive the changes of every later mutation,
// replacing any previous subscriber. fn runs synchronously inside the
// mutating call. Changes are addressed to section 0.
func (s *Section) Subscribe(fn func([]Change)) *Subscription {
	s.nextID++
	sub := &Subscription{section: s, id: s.nextID, fn: fn}
	s.sub = sub
	return sub
}

// Subscribed reports whether the section has a subscriber.
func (s *Section) Subscribed() bool {
	return s.sub != nil
}

// Unsubscribe detaches the subscriber. It is a no-op if the subscription
// was already released or replaced by a later Subscribe.
func (sub *Subscription) Unsubscribe() {
	if sub == nil || sub.section == nil {
		return
	}
	if cur := sub.section.sub; cur != nil && cur.id == sub.id {
		sub.section.sub = nil
	}
	sub.section = nil
}

// Active reports whether the subscription still receives changes.
func (sub *Subscription) Active() bool {
	return sub != nil && sub.section != nil && sub.section.sub != nil && sub.section.sub.id == sub.id
}
