package httpmetrics

import (
	"augmentloop/internal/global"
	"augmentloop/internal/metrics"
	"context"
	"net/http"
	"strings"
	"time"
)

func parseWindow(r *http.Request) (start, end time.Time, err error) {
	rawStart := r.FormValue("starttime")
	switch {
	case rawStart == "":
		start = time.Now().Add(-1 * time.Minute)
	case rawStart[0] == '-' || rawStart[0] == '+':
		dur, derr := time.ParseDuration(rawStart)
		if derr != nil {
			start = time.Now().Add(-1 * time.Minute)
		} else {
			start = time.Now().Add(dur)
		}
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStart)
		if err != nil {
			return
		}
	}

	rawEnd := r.FormValue("endtime")
	if rawEnd == "" || rawEnd == "now" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339Nano, rawEnd)
	}
	return
}

// Handles metric search requests bounded by a time window.
func handleData(baseCtx context.Context, search DataSearcher, w http.ResponseWriter, r *http.Request) {
	rawNamespace := strings.TrimPrefix(r.URL.Path, global.SearchPath)
	var reqNamespace []string
	if rawNamespace != "" {
		reqNamespace = strings.Split(rawNamespace, "/")
	}

	reqName := r.FormValue("name")

	start, end, err := parseWindow(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rawResults := search(reqName, reqNamespace, start, end)

	var results []metrics.JMetric
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, w, Jerror{Msg: "search returned no results"})
	} else {
		jResp(baseCtx, w, results)
	}
}
