package domain

import (
	"time"
)

// MarketSentiment is the fixed sentiment scale used by analysis notes.
type MarketSentiment string

const (
	SentimentVeryBullish MarketSentiment = "非常樂觀"
	SentimentBullish     MarketSentiment = "樂觀"
	SentimentNeutral     MarketSentiment = "中性"
	SentimentBearish     MarketSentiment = "悲觀"
	SentimentVeryBearish MarketSentiment = "非常悲觀"
)

// Sentiments lists the accepted sentiment values in display order.
var Sentiments = []MarketSentiment{
	SentimentVeryBullish,
	SentimentBullish,
	SentimentNeutral,
	SentimentBearish,
	SentimentVeryBearish,
}

// AnalysisNote is one user-entered trade analysis. Notes are append-only:
// the store never updates or deletes an existing row.
type AnalysisNote struct {
	EntryDate  time.Time       `json:"entry_date"`
	Code       string          `json:"code" validate:"required"`
	Name       string          `json:"name"`
	Thesis     string          `json:"thesis" validate:"required"`
	Prediction string          `json:"prediction" validate:"required"`
	// TargetPrice and StopLoss are optional; nil persists as an empty cell.
	TargetPrice *float64        `json:"target_price,omitempty" validate:"omitempty,gt=0"`
	StopLoss    *float64        `json:"stop_loss,omitempty" validate:"omitempty,gt=0"`
	Confidence  int             `json:"confidence" validate:"required,min=1,max=10"`
	Tags        []string        `json:"tags,omitempty"`
	Sentiment   MarketSentiment `json:"sentiment" validate:"required,oneof=非常樂觀 樂觀 中性 悲觀 非常悲觀"`
	Notes       string          `json:"notes"`
	Indicators  []string        `json:"indicators,omitempty"`
}
