package common

const (
	DefaultConfigPath        = "./configs/config.yml"
	DefaultFeedURL           = "wss://ws.finnhub.io"
	DefaultCandleIntervalSec = 60
	DefaultChannelBufferSize = 10000
	DefaultSubscribeGraceMs  = 3000
	DefaultReconnectMaxTries = 10
	DefaultServerPort        = 8080
)

// Universe is the fixed set of tickers every session subscribes to.
var Universe = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK.B",
	"UNH", "XOM", "JNJ", "JPM", "V", "PG", "MA", "HD", "CVX", "MRK",
	"ABBV", "LLY", "PEP", "COST", "AVGO", "KO", "TMO", "WMT", "MCD",
	"CSCO", "ACN", "ABT", "DHR", "VZ", "CRM", "NKE", "ADBE", "NEE",
	"LIN", "TXN", "PM", "CMCSA", "UPS", "ORCL", "DIS", "BMY", "NFLX",
	"AMD", "HON", "QCOM", "RTX", "UNP",
}
