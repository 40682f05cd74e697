package events

// Envelope das mensagens emitidas pelo supplier de dados (WebSocket).
// Exatamente um dos payloads é preenchido conforme Type.
type FeedMessage struct {
	Type       string             `json:"type"` // "odds" | "prediction" | "result"
	Odds       *OddsQuoteUpdated  `json:"odds,omitempty"`
	Prediction *PredictionCreated `json:"prediction,omitempty"`
	Result     *MatchResult       `json:"result,omitempty"`
}

const (
	FeedTypeOdds       = "odds"
	FeedTypePrediction = "prediction"
	FeedTypeResult     = "result"
)
