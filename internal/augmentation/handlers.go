package augmentation

import (
	"augmentloop/internal/expiry"
	"augmentloop/internal/global"
	"augmentloop/internal/logctx"
	"augmentloop/internal/pool"
	"augmentloop/internal/registry"
	"augmentloop/pkg/wire"
	"context"
	"time"
)

// dispatchClientMessage decodes the frame's type tag and routes to the
// matching handler. An unrecognized or malformed tag fails the message
// only, not the loop.
func (loop *Loop) dispatchClientMessage(ctx context.Context, msg clientMessage) {
	if len(msg.frame) == 0 {
		loop.stats.incCounter([]string{global.NSAugment}, "unknown")
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "dropped empty frame from %s\n", msg.peerAddr)
		return
	}

	switch string(msg.frame[0]) {
	case wire.TagConfig:
		loop.doConfig(ctx, msg.peerAddr, msg.frame)
	case wire.TagResponse:
		loop.doResponse(ctx, msg.peerAddr, msg.frame)
	default:
		loop.stats.incCounter([]string{global.NSAugment}, "unknown")
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"unknown message type %q from %s\n", msg.frame[0], msg.peerAddr)
	}
}

// doAugmentation admits a dispatched entry into augmenting and fans a
// request out to one instance per outstanding augmentor name.
func (loop *Loop) doAugmentation(ctx context.Context, entry *expiry.AuctionEntry) {
	start := loop.clock()
	info := entry.Info.(AuctionInfo)
	auctionID := info.AuctionID()

	if loop.augmenting.Contains(auctionID) {
		loop.stats.incCounter([]string{global.NSAugment}, "duplicateAuction")
		return
	}

	loop.augmenting.Insert(auctionID, entry)
	loop.setIdle(false)

	agentIDs := collectAgentIDs(info)
	snapshot := loop.registry.Current()

	for name := range entry.Outstanding {
		instance, found := pool.Pick(snapshot, name)
		if !found {
			loop.stats.incCounter([]string{global.NSAugment, name}, "noAvailableInstances")
			continue
		}

		loop.stats.incCounter([]string{global.NSAugment, name, instance.Address}, "requests")
		instance.NumInFlight.Add(1)
		loop.sendAugment(ctx, instance, name, auctionID, info, agentIDs, start)
	}

	loop.stats.observeHistogram([]string{global.NSAugment}, "requestTimeMs",
		float64(loop.clock().Sub(start).Microseconds())/1000.0)
}

func collectAgentIDs(info AuctionInfo) (agentIDs []string) {
	seen := make(map[string]struct{})
	for _, group := range info.PotentialGroups() {
		for _, bidder := range group.Bidders {
			if bidder.AgentID == "" {
				continue
			}
			if _, dup := seen[bidder.AgentID]; dup {
				continue
			}
			seen[bidder.AgentID] = struct{}{}
			agentIDs = append(agentIDs, bidder.AgentID)
		}
	}
	return
}

func (loop *Loop) sendAugment(ctx context.Context, instance *registry.AugmentorInstance, name, auctionID string, info AuctionInfo, agentIDs []string, dispatchTime time.Time) {
	loop.connsMu.Lock()
	conn, found := loop.conns[instance.Address]
	loop.connsMu.Unlock()
	if !found {
		return
	}

	frame := wire.EncodeAugment(wire.AugmentFrame{
		AugmentorName:     name,
		AuctionID:         auctionID,
		RequestFormat:     info.RequestFormat(),
		RequestBlob:       info.RequestBlob(),
		Agents:            agentIDs,
		DispatchTimestamp: dispatchTime,
	})

	if err := conn.Send(frame); err != nil {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"send AUGMENT to %s (%s) failed: %v\n", instance.Address, name, err)
	}
}

// doConfig registers (or re-registers) an augmentor instance.
func (loop *Loop) doConfig(ctx context.Context, peerAddr string, frame wire.Frame) {
	cfg, err := wire.DecodeConfig(frame)
	if err != nil {
		loop.stats.incCounter([]string{global.NSAugment}, "unknown")
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "malformed CONFIG from %s: %v\n", peerAddr, err)
		return
	}

	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = global.DefaultMaxInFlight
	}

	loop.registry.RemoveByAddress(peerAddr)
	loop.registry.Upsert(&registry.AugmentorInstance{
		Name:        cfg.Name,
		Address:     peerAddr,
		MaxInFlight: maxInFlight,
	})

	loop.stats.incCounter([]string{global.NSAugment, cfg.Name}, "configured")
	loop.stats.incCounter([]string{global.NSAugment, cfg.Name, peerAddr}, "configured")

	loop.connsMu.Lock()
	conn, found := loop.conns[peerAddr]
	loop.connsMu.Unlock()
	if found {
		if err := conn.Send(wire.EncodeConfigOK()); err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"send CONFIGOK to %s failed: %v\n", peerAddr, err)
		}
	}
}

// doResponse merges an augmentor's RESPONSE into its matching entry.
func (loop *Loop) doResponse(ctx context.Context, peerAddr string, frame wire.Frame) {
	loop.stats.incCounter([]string{global.NSAugment}, "response")

	parseStart := loop.clock()
	resp, err := wire.DecodeResponse(frame)
	if err != nil {
		loop.stats.incCounter([]string{global.NSAugment}, "unknown")
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "malformed RESPONSE: %v\n", err)
		return
	}

	list, parseErr := wire.ParseAugmentationBody(resp.Body)
	loop.stats.observeHistogram([]string{global.NSAugment}, "responseParseTimeMs",
		float64(loop.clock().Sub(parseStart).Microseconds())/1000.0)

	if parseErr != nil {
		loop.stats.incCounter([]string{global.NSAugment, resp.AugmentorName}, "responseParsingExceptions")
		list = wire.AugmentationList{}
	}

	timeTakenMs := float64(loop.clock().Sub(resp.StartTimestamp).Microseconds()) / 1000.0
	loop.stats.observeHistogram([]string{global.NSAugment, resp.AugmentorName}, "timeTakenMs", timeTakenMs)
	loop.stats.observeHistogram([]string{global.NSAugment, resp.AugmentorName}, "responseLengthBytes", float64(len(resp.Body)))
	loop.recordLatency(resp.AugmentorName, timeTakenMs)

	loop.decrementInFlight(peerAddr, resp.AugmentorName)

	entry, found := loop.augmenting.Get(resp.AuctionID)
	if !found {
		loop.stats.incCounter([]string{global.NSAugment}, "unknown")
		loop.stats.incCounter([]string{global.NSAugment, resp.AugmentorName, peerAddr}, "unknown")
		return
	}

	body := string(resp.Body)
	eventType := "validResponse"
	if body == "" || body == "null" {
		eventType = "nullResponse"
	}
	loop.stats.incCounter([]string{global.NSAugment, resp.AugmentorName, peerAddr}, eventType)

	info := entry.Info.(AuctionInfo)
	info.MergeAugmentation(resp.AugmentorName, list)
	delete(entry.Outstanding, resp.AugmentorName)

	if len(entry.Outstanding) == 0 {
		loop.augmenting.Remove(resp.AuctionID)
		entry.OnFinished(entry.Info)
		if loop.augmenting.Len() == 0 {
			loop.setIdle(true)
		}
	}
}

// decrementInFlight clamps down the in-flight counter of the exact instance
// that served this response, looked up by the address the RESPONSE arrived
// on within augmentorName. A mismatch (the instance reconfigured or
// disconnected and a different augmentor now owns that address) or a
// missing entry leaves the counters alone rather than touching an unrelated
// instance.
func (loop *Loop) decrementInFlight(peerAddr, augmentorName string) {
	instance, found := loop.registry.Current().ByAddress[peerAddr]
	if !found || instance.Name != augmentorName {
		return
	}

	for {
		current := instance.NumInFlight.Load()
		if current <= 0 {
			return
		}
		if instance.NumInFlight.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// doDisconnection evicts every instance at addr and fails nothing else —
// entries with that instance's augmentor name still outstanding simply
// ride out to their deadline.
func (loop *Loop) doDisconnection(ctx context.Context, addr string) {
	removed := loop.registry.RemoveByAddress(addr)
	for _, inst := range removed {
		loop.stats.incCounter([]string{global.NSAugment, inst.Name, addr}, "disconnected")
	}
}

// checkExpiries pops every entry past its deadline and invokes OnFinished
// with whatever has been merged so far.
func (loop *Loop) checkExpiries(ctx context.Context) {
	now := loop.clock()
	earliest, ok := loop.augmenting.Earliest()
	if !ok || earliest.After(now) {
		return
	}

	due := loop.augmenting.ExpireDue(now)
	for _, entry := range due {
		for name := range entry.Outstanding {
			loop.stats.incCounter([]string{global.NSAugment, name}, "expiredTooLate")
		}
		entry.OnFinished(entry.Info)
	}

	if loop.augmenting.Len() == 0 {
		loop.setIdle(true)
	}
}

// recordStats publishes per-augmentor in-flight gauges and saturation
// trend, then flushes the accumulated stats batch to the sink.
func (loop *Loop) recordStats(ctx context.Context) {
	snapshot := loop.registry.Current()

	for _, name := range snapshot.Names {
		var sum, capacity int64
		for _, inst := range snapshot.ByName[name] {
			sum += inst.NumInFlight.Load()
			capacity += int64(inst.MaxInFlight)
		}
		loop.stats.setGauge([]string{global.NSAugment, name}, "numInFlight", float64(sum))

		var utilizationPct float64
		if capacity > 0 {
			utilizationPct = float64(sum) / float64(capacity) * 100.0
		}

		tracker := loop.trackerFor(name)
		tracker.Observe(utilizationPct, loop.latencyFor(name))

		rising, falling := tracker.Trend()
		var trendValue float64
		switch {
		case rising:
			trendValue = 1
		case falling:
			trendValue = -1
		}
		loop.stats.setGauge([]string{global.NSAugment, name}, "saturationTrend", trendValue)
		loop.stats.setGauge([]string{global.NSAugment, name}, "augmentorLatencyMs", tracker.SmoothedLatencyMs())
	}

	if loop.sink != nil {
		loop.sink.Record(loop.stats.CollectMetrics(loop.statsTick))
	}
}
