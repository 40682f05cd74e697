package topics

const (
	// Dados de mercado
	OddsQuotes        = "odds_quotes"
	PredictionUpdates = "prediction_updates"

	// Resultados e liquidação
	MatchResults = "match_results"
	BetSettled   = "bet_settled"

	// DLQs
	OddsQuotesDLQ   = "odds_quotes_dlq"
	MatchResultsDLQ = "match_results_dlq"
)
