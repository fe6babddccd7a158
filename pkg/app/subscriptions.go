package app

// Subscriptions derives the desired subscriptions from a state. Positions
// are slots: the call at index i is compared with the call that occupied
// slot i after the previous state change.
type Subscriptions func(state any) []EffectCall

// slot is one subscription position. act is nil while the slot is inactive.
type slot struct {
	call EffectCall
	act  *activation
}

// refreshSubscriptions diffs the desired subscriptions for state against
// the running slots:
//
//	inactive -> active         start
//	active   -> inactive       stop
//	active   -> other effect   stop, then start
//	active   -> same effect    keep, even if the payload changed
func (a *App) refreshSubscriptions(state any) {
	if a.subscriptions == nil {
		return
	}
	calls := a.subscriptions(state)

	n := len(a.slots)
	if len(calls) > n {
		n = len(calls)
	}
	next := make([]slot, 0, len(calls))
	for i := 0; i < n; i++ {
		var cur slot
		if i < len(a.slots) {
			cur = a.slots[i]
		}
		var want EffectCall
		if i < len(calls) {
			want = calls[i]
		}

		if cur.act != nil && (!want.Active() || !SameEffect(cur.call.Effect, want.Effect)) {
			a.stopSlot(i, cur)
			cur = slot{}
		}
		if cur.act == nil && want.Active() {
			cur = a.startSlot(i, want)
		}
		if i < len(calls) {
			next = append(next, cur)
		}
	}
	a.slots = next
	a.notifySubscriptions()
}

func (a *App) startSlot(i int, call EffectCall) slot {
	act := &activation{app: a}
	a.logger.Debug("subscription started", "slot", i)
	act.cleanup = call.Effect.Start(act, call.Payload)
	return slot{call: call, act: act}
}

func (a *App) stopSlot(i int, s slot) {
	a.logger.Debug("subscription stopped", "slot", i)
	s.act.stop()
}

// stopSubscriptions stops every active slot.
func (a *App) stopSubscriptions() {
	for i, s := range a.slots {
		if s.act != nil {
			a.stopSlot(i, s)
		}
	}
	a.slots = nil
	a.notifySubscriptions()
}

func (a *App) activeSubscriptions() int {
	count := 0
	for _, s := range a.slots {
		if s.act != nil {
			count++
		}
	}
	return count
}
