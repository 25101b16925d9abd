package httpmetrics

import (
	"augmentloop/internal/global"
	"augmentloop/internal/metrics"
	"context"
	"net/http"
	"strings"
)

// Handles metric search to discover metric shapes (no data, just shape).
func handleDiscovery(baseCtx context.Context, discover Discoverer, w http.ResponseWriter, r *http.Request) {
	rawNamespace := strings.TrimPrefix(r.URL.Path, global.DiscoveryPath)

	var reqNamespace []string
	if rawNamespace != "" {
		reqNamespace = strings.Split(rawNamespace, "/")
	}

	reqName := r.FormValue("name")
	reqDescription := r.FormValue("description")
	reqUnit := r.FormValue("unit")
	rawType := r.FormValue("type")

	var reqType metrics.MetricType
	switch metrics.MetricType(strings.ToLower(rawType)) {
	case metrics.Counter:
		reqType = metrics.Counter
	case metrics.Gauge:
		reqType = metrics.Gauge
	case metrics.Summary:
		reqType = metrics.Summary
	default:
		if rawType != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	rawResults := discover(reqName, reqDescription, reqNamespace, reqUnit, reqType)

	var results []metrics.JMetric
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, w, Jerror{Msg: "discovery returned no results"})
	} else {
		jResp(baseCtx, w, results)
	}
}
