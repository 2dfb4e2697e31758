package api

// Wire types for the wallet backend. All successful responses arrive wrapped
// in an envelope: {"data": ...}. Integer token amounts travel as decimal
// strings of base units.

// Envelope is the success wrapper used by every backend endpoint.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// AuthExchangeRequest carries the raw platform identity assertion to
// POST /auth/exchange.
type AuthExchangeRequest struct {
	Assertion string `json:"assertion"`
}

// UserInfo identifies the authenticated platform user.
type UserInfo struct {
	PlatformUserID int64  `json:"platformUserId"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	LanguageCode   string `json:"languageCode,omitempty"`
}

// AuthExchangeResponse is the result of a successful identity exchange.
// ExpiresAt is an RFC 3339 timestamp.
type AuthExchangeResponse struct {
	Token     string   `json:"token"`
	User      UserInfo `json:"user"`
	ExpiresAt string   `json:"expiresAt"`
}

// ListWalletsResponse is the body of GET /wallets.
type ListWalletsResponse struct {
	Addresses []string `json:"addresses"`
}

// CreateWalletResponse is the body of POST /wallets and POST /wallets/claim.
type CreateWalletResponse struct {
	Address string `json:"address"`
}

// AirdropRequest funds a wallet on the test network. Amount is optional;
// the backend falls back to its default when empty.
type AirdropRequest struct {
	Amount string `json:"amount,omitempty"`
}

// AirdropResponse reports the funding transaction.
type AirdropResponse struct {
	Signature string `json:"signature"`
	Amount    string `json:"amount"`
}

// NativeBalanceResponse is the body of GET /wallets/{address}/balance/native.
type NativeBalanceResponse struct {
	AmountBaseUnits string `json:"amountBaseUnits"`
}

// EncryptedBalance is the confidential part of a token balance, split into
// the pending and available sub-amounts. Both are base-unit strings.
type EncryptedBalance struct {
	Pending   string `json:"pending"`
	Available string `json:"available"`
}

// TokenBalanceResponse is the body of GET /wallets/{address}/balance?mint=X.
type TokenBalanceResponse struct {
	PublicAmountBaseUnits string           `json:"publicAmountBaseUnits"`
	EncryptedBalance      EncryptedBalance `json:"encryptedBalance"`
}

// TransactionResult is one signed on-chain step of a multi-step operation.
type TransactionResult struct {
	Label     string `json:"label"`
	Signature string `json:"signature"`
}

// ConvertRequest is shared by POST /wallets/{address}/deposit (public to
// private) and POST /wallets/{address}/withdraw (private to public).
type ConvertRequest struct {
	Mint            string `json:"mint"`
	AmountBaseUnits string `json:"amountBaseUnits"`
	Decimals        uint8  `json:"decimals"`
}

// ConvertResponse lists the steps the backend executed for a conversion.
type ConvertResponse struct {
	Transactions []TransactionResult `json:"transactions"`
}

// MintRequest is the body of POST /tokens/{address}/mint.
type MintRequest struct {
	Mint   string `json:"mint"`
	Amount string `json:"amount"`
}

// MintResponse reports the mint transaction.
type MintResponse struct {
	Mint      string `json:"mint"`
	Signature string `json:"signature"`
}

// TransferRequest is the body of POST /transfers (address recipient).
type TransferRequest struct {
	Source    string `json:"source"`
	Recipient string `json:"recipient"`
	Mint      string `json:"mint"`
	Amount    string `json:"amount"`
}

// TransferResponse lists the steps executed for a transfer. Confidential
// transfers require several signed instructions per logical send.
type TransferResponse struct {
	Transactions []TransactionResult `json:"transactions"`
}

// HandleTransferRequest is the body of POST /transfers/telegram, addressing
// the recipient by platform handle instead of on-chain address.
type HandleTransferRequest struct {
	Source           string `json:"source"`
	TelegramUsername string `json:"telegramUsername"`
	Mint             string `json:"mint"`
	Amount           string `json:"amount"`
}

// TransferRecipient describes the resolved handle recipient. NewWallet is
// true when the backend reserved a fresh wallet for a handle whose owner has
// not authenticated yet.
type TransferRecipient struct {
	Address   string `json:"pubkey"`
	Username  string `json:"username"`
	NewWallet bool   `json:"newWallet"`
}

// HandleTransferResponse is the handle-transfer result.
type HandleTransferResponse struct {
	Transactions []TransactionResult `json:"transactions"`
	Recipient    TransferRecipient   `json:"recipient"`
}
