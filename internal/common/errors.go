package common

type ErrorCode string
type ErrorMessage string

const (
	ErrCodeConfigLoadFailed    ErrorCode = "CONFIG_LOAD_FAILED"
	ErrCodeFeedConnectFailed   ErrorCode = "FEED_CONNECT_FAILED"
	ErrCodeFeedSubscribeFailed ErrorCode = "FEED_SUBSCRIBE_FAILED"
	ErrCodeFeedReadFailed      ErrorCode = "FEED_READ_FAILED"
	ErrCodeFeedSendFailed      ErrorCode = "FEED_SEND_FAILED"
	ErrCodeFeedOffline         ErrorCode = "FEED_OFFLINE"
	ErrCodeDecodeFailed        ErrorCode = "DECODE_FAILED"
	ErrCodeEmptyTradeData      ErrorCode = "EMPTY_TRADE_DATA"
	ErrCodeChannelFull         ErrorCode = "CHANNEL_FULL"
	ErrCodeStorageFailed       ErrorCode = "STORAGE_FAILED"
	ErrCodeWalletUpdateFailed  ErrorCode = "WALLET_UPDATE_FAILED"
	ErrCodeServerFailed        ErrorCode = "SERVER_FAILED"
)

const (
	ErrMsgConfigLoadFailed    ErrorMessage = "Failed to load configuration"
	ErrMsgFeedConnectFailed   ErrorMessage = "Failed to connect to market-data feed"
	ErrMsgFeedSubscribeFailed ErrorMessage = "Failed to subscribe to symbol"
	ErrMsgFeedReadFailed      ErrorMessage = "Failed to read from market-data feed"
	ErrMsgFeedSendFailed      ErrorMessage = "Failed to send to market-data feed"
	ErrMsgFeedOffline         ErrorMessage = "Reconnect ceiling reached, feed is offline"
	ErrMsgDecodeFailed        ErrorMessage = "Failed to decode feed message"
	ErrMsgEmptyTradeData      ErrorMessage = "Trade message with no data"
	ErrMsgChannelFull         ErrorMessage = "Channel is full, message dropped"
	ErrMsgStorageFailed       ErrorMessage = "Storage operation failed"
	ErrMsgWalletUpdateFailed  ErrorMessage = "Wallet update failed"
	ErrMsgServerFailed        ErrorMessage = "HTTP server failed"
)

func (e ErrorCode) String() string {
	return string(e)
}

func (m ErrorMessage) String() string {
	return string(m)
}
