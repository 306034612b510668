package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Catalog store queries ---
	for _, op := range []string{"initialize_schema", "upsert", "count_matching",
		"find_matching", "calculate_stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, mt := range []string{"audio", "video"} {
		CatalogRecordsTotal.WithLabelValues(mt)
	}

	// --- Ingestion outcomes (per source × outcome) ---
	for _, source := range []string{"live", "backfill"} {
		for _, outcome := range []string{"inserted", "duplicate", "skipped", "error"} {
			IngestOutcomesTotal.WithLabelValues(source, outcome)
		}
	}

	// --- Session lifecycle ---
	for _, reason := range []string{"closed", "timeout"} {
		SessionsEndedTotal.WithLabelValues(reason)
	}
	for _, result := range []string{"ok", "expired", "denied", "error"} {
		CallbackResultsTotal.WithLabelValues(result)
	}

	// --- Transport calls ---
	for _, method := range []string{"sendMessage", "editMessageText", "deleteMessage",
		"answerCallbackQuery", "getChatMember", "getChatHistory", "getMe"} {
		TransportCallsTotal.WithLabelValues(method, "success")
		TransportCallsTotal.WithLabelValues(method, "error")
		TransportCallDuration.WithLabelValues(method)
		TransportRetriesTotal.WithLabelValues(method)
	}

	for _, kind := range []string{"message", "callback", "other"} {
		UpdatesReceivedTotal.WithLabelValues(kind)
	}
}
