package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/paystack"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway はPaystackクライアントの差し替え点。テストではフェイクを刺す
type PaymentGateway interface {
	Initialize(ctx context.Context, in paystack.InitializeInput) (paystack.InitializeData, error)
	Verify(ctx context.Context, reference string) (paystack.VerifyData, error)
	VerifyWebhookSignature(rawBody []byte, signature string) bool
	CreateTransferRecipient(ctx context.Context, in paystack.TransferRecipientInput) (paystack.TransferRecipientData, error)
	CheckBalance(ctx context.Context) ([]paystack.Balance, error)
}

// OrderMailer は注文確認メールの送信。nilなら送らない
type OrderMailer interface {
	SendOrderConfirmation(to string, name string, orderID int64, total decimal.Decimal) error
}

// PaymentUsecase は決済の初期化と照合を担う。
// 照合は2つのトリガー（クライアントのverifyとゲートのwebhook）から同時に来るため、
// 遷移判定は必ずトランザクション内の行ロック下で行う
type PaymentUsecase struct {
	paymentRepo repo.PaymentRepository
	orderRepo   repo.OrderRepository
	tx          repo.TransactionManager
	gateway     PaymentGateway
	mailer      OrderMailer
	callbackURL string
	publicKey   string
}

func NewPaymentUsecase(
	paymentRepo repo.PaymentRepository,
	orderRepo repo.OrderRepository,
	tx repo.TransactionManager,
	gateway PaymentGateway,
	mailer OrderMailer,
	callbackURL string,
	publicKey string,
) *PaymentUsecase {
	return &PaymentUsecase{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		tx:          tx,
		gateway:     gateway,
		mailer:      mailer,
		callbackURL: callbackURL,
		publicKey:   publicKey,
	}
}

// ゲートのエラー種別をHTTPへ写す。入力不備だけ400、残りは502
func mapGatewayError(err error) error {
	if pe, ok := paystack.AsError(err); ok {
		if pe.Kind == paystack.KindValidation {
			return NewHTTPError(http.StatusBadRequest, pe.Message)
		}
	}
	return NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
}

type InitializePaymentInput struct {
	OrderID *int64
	Email   string
	Amount  decimal.Decimal
}

type InitializePaymentOutput struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	//インライン決済を使うフロント向け
	PublicKey string `json:"public_key,omitempty"`
}

// 決済の初期化。
// ゲートを呼ぶ前にローカル参照を採番してpending行を必ず残す。
// これが無いとwebhookが先着したとき参照の突き合わせ先が無くなる
func (u *PaymentUsecase) InitializePayment(ctx context.Context, in InitializePaymentInput) (InitializePaymentOutput, error) {
	email := strings.TrimSpace(in.Email)
	amount := in.Amount

	//注文に紐付ける場合は金額と宛先を注文から取る。クライアント申告の金額は信用しない
	if in.OrderID != nil {
		order, err := u.orderRepo.FindByID(ctx, *in.OrderID)
		if err == repo.ErrNotFound {
			return InitializePaymentOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return InitializePaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if order.IsPaid {
			return InitializePaymentOutput{}, NewHTTPError(http.StatusConflict, "order already paid")
		}
		amount = order.TotalAmount
		if email == "" {
			email = order.CustomerEmail
		}
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if !amount.IsPositive() {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	reference := uuid.NewString()
	now := time.Now()

	if _, err := u.paymentRepo.Create(ctx, model.Payment{
		OrderID:          in.OrderID,
		PaymentReference: reference,
		Amount:           amount,
		Email:            email,
		Status:           model.PaymentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	data, err := u.gateway.Initialize(ctx, paystack.InitializeInput{
		Email:       email,
		Amount:      amount,
		Reference:   reference,
		CallbackURL: u.callbackURL,
	})
	if err != nil {
		//pending行は残す。後からverifyやcancelで決着させられる
		return InitializePaymentOutput{}, mapGatewayError(err)
	}

	return InitializePaymentOutput{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        reference,
		Amount:           amount,
		PublicKey:        u.publicKey,
	}, nil
}

type PaymentOutput struct {
	Reference         string          `json:"reference"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Email             string          `json:"email"`
	OrderID           *int64          `json:"order_id"`
	PaystackReference *string         `json:"paystack_reference"`
	PaidAt            *time.Time      `json:"paid_at"`
}

func paymentOutput(p model.Payment) PaymentOutput {
	return PaymentOutput{
		Reference:         p.PaymentReference,
		Status:            string(p.Status),
		Amount:            p.Amount,
		Email:             p.Email,
		OrderID:           p.OrderID,
		PaystackReference: p.PaystackReference,
		PaidAt:            p.PaidAt,
	}
}

// ゲートの取引状態をローカルのステータスへ写す。
// 判定不能な中間状態はpendingのまま（書き込みなし）
func statusFromGateway(s string) (model.PaymentStatus, bool) {
	switch s {
	case "success":
		return model.PaymentStatusSuccess, true
	case "failed":
		return model.PaymentStatusFailed, true
	case "abandoned":
		return model.PaymentStatusAbandoned, true
	default:
		return model.PaymentStatusPending, false
	}
}

// VerifyPayment はトリガーA（クライアント起点の照合）。
// ゲートへ照会してから行ロック下で遷移する。何度呼んでも結果は同じ
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, reference string) (PaymentOutput, error) {
	if strings.TrimSpace(reference) == "" {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "reference required")
	}

	//先にローカル行の存在を確認。未知の参照でゲートを叩かない
	if _, err := u.paymentRepo.FindByReference(ctx, reference); err != nil {
		if err == repo.ErrNotFound {
			return PaymentOutput{}, NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return PaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	data, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		return PaymentOutput{}, mapGatewayError(err)
	}

	return u.reconcile(ctx, reference, data)
}

// reconcile は照合の本体。両トリガーが共有する。
// ロック獲得→終端チェック→遷移→（成功なら）注文への反映、までを1トランザクションで行う
func (u *PaymentUsecase) reconcile(ctx context.Context, reference string, data paystack.VerifyData) (PaymentOutput, error) {
	var out PaymentOutput
	var mailTo string
	var mailName string
	var mailOrderID int64
	var mailTotal decimal.Decimal

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().LockByReference(ctx, reference)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//終端は動かさない。二重verifyや遅delivered webhookはここで吸収される
		if p.Status.IsTerminal() {
			out = paymentOutput(p)
			return nil
		}

		next, decided := statusFromGateway(data.Status)
		if !decided {
			out = paymentOutput(p)
			return nil
		}

		//金額の突き合わせ。ゲート申告額がローカルと違えば成功扱いにしない
		if next == model.PaymentStatusSuccess {
			if !paystack.FromMinorUnits(data.Amount).Equal(p.Amount) {
				next = model.PaymentStatusFailed
			}
		}

		var gatewayRef *string
		var paidAt *time.Time
		if next == model.PaymentStatusSuccess {
			gr := data.GatewayReference()
			gatewayRef = &gr
			paidAt = data.PaidAtTime()
			if paidAt == nil {
				now := time.Now()
				paidAt = &now
			}
		}

		if err := r.Payments().UpdateStatus(ctx, p.ID, next, gatewayRef, paidAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//成功なら注文も同じトランザクションで支払い済みへ
		if next == model.PaymentStatusSuccess && p.OrderID != nil {
			if err := r.Orders().MarkPaid(ctx, *p.OrderID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			order, err := r.Orders().FindByID(ctx, *p.OrderID)
			if err == nil {
				mailTo = order.CustomerEmail
				mailName = order.CustomerName
				mailOrderID = order.ID
				mailTotal = order.TotalAmount
			}
		}

		p.Status = next
		p.PaystackReference = gatewayRef
		p.PaidAt = paidAt
		out = paymentOutput(p)
		return nil
	})
	if err != nil {
		return PaymentOutput{}, err
	}

	//メールはコミット後に非同期で。失敗しても決済結果には影響させない
	if u.mailer != nil && mailTo != "" {
		go func() {
			_ = u.mailer.SendOrderConfirmation(mailTo, mailName, mailOrderID, mailTotal)
		}()
	}

	return out, nil
}

type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleWebhook はトリガーB（ゲート起点の照合）。
// 署名検証はJSONパースより前、読み取ったままのボディに対して行う。
// 署名・パース失敗は400（ゲート側の再送に乗せる）。
// それ以外は処理結果にかかわらず200で受ける（再送ループを避ける）
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !u.gateway.VerifyWebhookSignature(rawBody, signature) {
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if env.Event != "charge.success" {
		//扱わないイベントもackする
		return nil
	}

	var data paystack.VerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(data.Reference) == "" {
		return nil
	}

	_, err := u.paymentRepo.FindByReference(ctx, data.Reference)
	if err == repo.ErrNotFound {
		//ローカルに無い参照。webhookの申告は鵜呑みにせずゲートへ照会し直す
		verified, verr := u.gateway.Verify(ctx, data.Reference)
		if verr != nil || verified.Status != "success" {
			return nil
		}
		now := time.Now()
		gr := verified.GatewayReference()
		paidAt := verified.PaidAtTime()
		if paidAt == nil {
			paidAt = &now
		}
		//メールアドレスはイベント本文のものを優先し、照会結果で補完
		email := data.Customer.Email
		if email == "" {
			email = verified.Customer.Email
		}
		if _, cerr := u.paymentRepo.Create(ctx, model.Payment{
			PaymentReference:  verified.Reference,
			PaystackReference: &gr,
			Amount:            paystack.FromMinorUnits(verified.Amount),
			Email:             email,
			Status:            model.PaymentStatusSuccess,
			PaidAt:            paidAt,
			CreatedAt:         now,
			UpdatedAt:         now,
		}); cerr != nil {
			//同時到着の再送と衝突した場合など。ackして再送に任せない
			return nil
		}
		return nil
	}
	if err != nil {
		return nil
	}

	if _, err := u.reconcile(ctx, data.Reference, data); err != nil {
		//照合が失敗してもwebhookは受け取ったことにする。再送時にまた試みる
		return nil
	}
	return nil
}

// CancelPayment は未決着の決済を放棄済みへ。終端のものは動かせない
func (u *PaymentUsecase) CancelPayment(ctx context.Context, reference string) (PaymentOutput, error) {
	if strings.TrimSpace(reference) == "" {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "reference required")
	}

	var out PaymentOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().LockByReference(ctx, reference)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if p.Status.IsTerminal() {
			return NewHTTPError(http.StatusConflict, "payment already finalized")
		}
		if err := r.Payments().UpdateStatus(ctx, p.ID, model.PaymentStatusAbandoned, nil, nil); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		p.Status = model.PaymentStatusAbandoned
		out = paymentOutput(p)
		return nil
	})
	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

type TransferRecipientInput struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

type TransferRecipientOutput struct {
	RecipientCode string `json:"recipient_code"`
	Active        bool   `json:"active"`
}

// 出品者の送金先登録。ゲートへの素通しに入力チェックだけ重ねる
func (u *PaymentUsecase) CreateTransferRecipient(ctx context.Context, in TransferRecipientInput) (TransferRecipientOutput, error) {
	data, err := u.gateway.CreateTransferRecipient(ctx, paystack.TransferRecipientInput{
		Name:          in.Name,
		AccountNumber: in.AccountNumber,
		BankCode:      in.BankCode,
	})
	if err != nil {
		return TransferRecipientOutput{}, mapGatewayError(err)
	}
	return TransferRecipientOutput{RecipientCode: data.RecipientCode, Active: data.Active}, nil
}

type BalanceOutput struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// 残高照会。koboから通貨単位へ直して返す
func (u *PaymentUsecase) CheckBalance(ctx context.Context) ([]BalanceOutput, error) {
	balances, err := u.gateway.CheckBalance(ctx)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	out := make([]BalanceOutput, 0, len(balances))
	for _, b := range balances {
		out = append(out, BalanceOutput{Currency: b.Currency, Balance: paystack.FromMinorUnits(b.Balance)})
	}
	return out, nil
}
