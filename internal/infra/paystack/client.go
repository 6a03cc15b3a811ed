package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.paystack.co"

// 外部呼び出しのタイムアウト。ハング対策で必ず有限にする
const requestTimeout = 30 * time.Second

type ErrorKind int

const (
	// 4xx（入力や参照の不備。リトライしても無駄）
	KindValidation ErrorKind = iota + 1
	// タイムアウト/接続失敗/5xx（あとでリトライできる）
	KindUnavailable
	// JSONが壊れている、期待したenvelopeが無い
	KindProtocol
)

// ゲート呼び出しの失敗。KindでHTTPステータスへのマッピングを決める
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("paystack validation error (%d): %s", e.StatusCode, e.Message)
	case KindUnavailable:
		return fmt.Sprintf("paystack unavailable: %s", e.Message)
	default:
		return fmt.Sprintf("paystack protocol error: %s", e.Message)
	}
}

func newError(kind ErrorKind, status int, message string) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message}
}

func AsError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}

// 主要通貨単位 → kobo（×100）
// 丸めは最近接整数（0.5は0から遠い方へ）。金額のオフバイワンを避けるため固定
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// kobo → 主要通貨単位（小数2桁）
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}

type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// 成功envelope: {"status": true, "message": ..., "data": {...}}
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type InitializeInput struct {
	Email       string
	Amount      decimal.Decimal
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// 取引を初期化してホスト型決済ページのURLを得る
func (c *Client) Initialize(ctx context.Context, in InitializeInput) (InitializeData, error) {
	//ネットワークに出る前の入力チェック
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return InitializeData{}, newError(KindValidation, 0, "invalid email")
	}
	if !in.Amount.IsPositive() {
		return InitializeData{}, newError(KindValidation, 0, "amount must be positive")
	}
	if strings.TrimSpace(in.Reference) == "" {
		return InitializeData{}, newError(KindValidation, 0, "reference required")
	}

	body := map[string]interface{}{
		"email":     in.Email,
		"amount":    ToMinorUnits(in.Amount),
		"reference": in.Reference,
		"currency":  "NGN",
	}
	if in.CallbackURL != "" {
		body["callback_url"] = in.CallbackURL
	}
	if in.Metadata != nil {
		body["metadata"] = in.Metadata
	}

	var data InitializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return InitializeData{}, err
	}
	return data, nil
}

type VerifyCustomer struct {
	Email string `json:"email"`
}

type VerifyData struct {
	Status string `json:"status"`
	//こちらが採番した参照
	Reference string `json:"reference"`
	//Paystack側の取引ID
	ID int64 `json:"id"`
	//kobo
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Channel  string         `json:"channel"`
	PaidAt   string         `json:"paid_at"`
	Customer VerifyCustomer `json:"customer"`
}

// ゲート側の取引IDを文字列で返す
func (d VerifyData) GatewayReference() string {
	return strconv.FormatInt(d.ID, 10)
}

// paid_atをtimeへ。空や不正は nil
func (d VerifyData) PaidAtTime() *time.Time {
	if d.PaidAt == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, d.PaidAt)
	if err != nil {
		return nil
	}
	return &t
}

// 取引の状態を照会する
func (c *Client) Verify(ctx context.Context, reference string) (VerifyData, error) {
	if strings.TrimSpace(reference) == "" {
		return VerifyData{}, newError(KindValidation, 0, "reference required")
	}

	var data VerifyData
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return VerifyData{}, err
	}
	return data, nil
}

// webhook本文の署名検証
// 生のボディbytesに対するHMAC-SHA512（hex）を共有シークレットで計算して比較する
// 再パース/再シリアライズしたボディではバイト列が変わって必ず失敗するので、
// ハンドラは必ず読み取ったままのbodyを渡すこと
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	//タイミング攻撃対策で定数時間比較
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

type TransferRecipientInput struct {
	Name          string
	AccountNumber string
	BankCode      string
}

type TransferRecipientData struct {
	RecipientCode string `json:"recipient_code"`
	Active        bool   `json:"active"`
}

// 出品者の送金先を登録する
func (c *Client) CreateTransferRecipient(ctx context.Context, in TransferRecipientInput) (TransferRecipientData, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AccountNumber) == "" || strings.TrimSpace(in.BankCode) == "" {
		return TransferRecipientData{}, newError(KindValidation, 0, "name, account_number and bank_code required")
	}

	body := map[string]interface{}{
		"type":           "nuban",
		"name":           in.Name,
		"account_number": in.AccountNumber,
		"bank_code":      in.BankCode,
		"currency":       "NGN",
	}

	var data TransferRecipientData
	if err := c.do(ctx, http.MethodPost, "/transferrecipient", body, &data); err != nil {
		return TransferRecipientData{}, err
	}
	return data, nil
}

type Balance struct {
	Currency string `json:"currency"`
	//kobo
	Balance int64 `json:"balance"`
}

// 残高照会
func (c *Client) CheckBalance(ctx context.Context) ([]Balance, error) {
	var data []Balance
	if err := c.do(ctx, http.MethodGet, "/balance", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// 共通のリクエスト送信。envelopeを剥がしてdataをoutへdecodeする
// secretKeyやauthorization_code等の機微情報はログに出さない
func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return newError(KindProtocol, 0, "encode request: "+err.Error())
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return newError(KindProtocol, 0, "build request: "+err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		//タイムアウト・接続失敗
		return newError(KindUnavailable, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindUnavailable, resp.StatusCode, "read response: "+err.Error())
	}

	if resp.StatusCode >= 500 {
		return newError(KindUnavailable, resp.StatusCode, "gateway error")
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return newError(KindProtocol, resp.StatusCode, "malformed response body")
	}

	if resp.StatusCode >= 400 {
		//provider側のメッセージは診断用に残すが、状態遷移の根拠にはしない
		return newError(KindValidation, resp.StatusCode, env.Message)
	}

	if !env.Status {
		return newError(KindProtocol, resp.StatusCode, "unexpected envelope: "+env.Message)
	}
	if out != nil {
		if env.Data == nil {
			return newError(KindProtocol, resp.StatusCode, "missing data field")
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return newError(KindProtocol, resp.StatusCode, "malformed data field")
		}
	}

	return nil
}
