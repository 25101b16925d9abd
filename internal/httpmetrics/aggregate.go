package httpmetrics

import (
	"augmentloop/internal/global"
	"context"
	"net/http"
	"strings"
)

// Handles metric search requests with a sum/min/max/avg reduction applied.
func handleAggregation(baseCtx context.Context, aggregate AggSearcher, w http.ResponseWriter, r *http.Request) {
	rawNamespace := strings.TrimPrefix(r.URL.Path, global.AggregationPath)
	var reqNamespace []string
	if rawNamespace != "" {
		reqNamespace = strings.Split(rawNamespace, "/")
	}

	reqName := r.FormValue("name")
	aggType := r.FormValue("aggregation")

	start, end, err := parseWindow(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := aggregate(aggType, reqName, reqNamespace, start, end)
	if err != nil {
		jResp(baseCtx, w, Jerror{Msg: err.Error()})
		return
	}
	jResp(baseCtx, w, result.Convert())
}
