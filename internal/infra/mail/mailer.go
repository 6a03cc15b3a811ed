package mail

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// 注文確認メールの送信。決済トランザクションの外で呼ぶこと
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username string, password string, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) SendOrderConfirmation(to string, name string, orderID int64, total decimal.Decimal) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order #%d confirmed", orderID))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour payment for order #%d (NGN %s) was received. We are preparing your items.\n",
		name, orderID, total.StringFixed(2),
	))

	return m.dialer.DialAndSend(msg)
}
