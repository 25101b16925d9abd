package metrics

import (
	"fmt"
	"os"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// BeatsSink ships recorded metrics to a Beats/Logstash endpoint over the
// lumberjack protocol, alongside whatever local registry also records them.
// Best-effort: a send failure is swallowed rather than stalling the loop
// thread, mirroring the fire-and-forget posture of the original router's
// stats reporting.
type BeatsSink struct {
	sink     *lumberjack.SyncClient
	hostname string
}

// Opens a new Beats sink. Returns nil, nil if endpoint is empty so callers
// can treat a disabled sink as a normal no-op TeeSink member.
func NewBeatsSink(endpoint string) (sink *BeatsSink, err error) {
	if endpoint == "" {
		return
	}

	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(3 * time.Second)

	client, err := lumberjack.SyncDial(endpoint, compression, timeout)
	if err != nil {
		err = fmt.Errorf("failed connection to beats metrics endpoint: %w", err)
		return
	}

	hostname, _ := os.Hostname()
	sink = &BeatsSink{sink: client, hostname: hostname}
	return
}

func (sink *BeatsSink) Record(batch []Metric) {
	if sink == nil || len(batch) == 0 {
		return
	}

	events := make([]interface{}, 0, len(batch))
	for _, metric := range batch {
		jm := metric.Convert()
		events = append(events, map[string]interface{}{
			"@timestamp": jm.Timestamp,
			"host": map[string]interface{}{
				"hostname": sink.hostname,
			},
			"augmentloop": map[string]interface{}{
				"metric":      jm.Name,
				"description": jm.Description,
				"namespace":   jm.Namespace,
				"type":        jm.Type,
				"value":       jm.Value.Raw,
				"unit":        jm.Value.Unit,
				"interval":    jm.Value.Interval,
			},
		})
	}

	// Best-effort: lumberjack send errors are not actionable on the loop
	// thread's own time budget.
	_, _ = sink.sink.Send(events)
}

func (sink *BeatsSink) Close() (err error) {
	if sink == nil || sink.sink == nil {
		return
	}
	err = sink.sink.Close()
	return
}
