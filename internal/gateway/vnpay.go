// Package gateway implements the VNPAY hosted-checkout protocol: building
// signed payment URLs and verifying the signature on return redirects and
// IPN (instant payment notification) callbacks.
//
// The wire rules are compatibility-critical: parameters are sorted by key,
// values (never keys) are percent-encoded with spaces as '+', the pairs are
// joined with '&' using the already-encoded values, and that exact string
// is HMAC-SHA512'd with the merchant secret. The signature itself is never
// part of the signed string.
package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vhoang/cinema-booking/config"
)

const (
	vnpVersion = "2.1.0"
	vnpCommand = "pay"
	currCode   = "VND"
	orderType  = "other"

	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

// Provider response codes (vnp_ResponseCode).
const (
	RespSuccess   = "00"
	RespCancelled = "24"
	RespExpired   = "11"
)

// IPNAck is the structured acknowledgement an IPN handler must always
// return; the provider retries delivery until it receives code "00".
type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

var (
	AckSuccess               = IPNAck{RspCode: "00", Message: "Success"}
	AckOrderNotFound         = IPNAck{RspCode: "01", Message: "Order not found"}
	AckOrderAlreadyConfirmed = IPNAck{RspCode: "02", Message: "Order already confirmed"}
	AckInvalidAmount         = IPNAck{RspCode: "04", Message: "Invalid amount"}
	AckChecksumFailed        = IPNAck{RspCode: "97", Message: "Checksum failed"}
	AckUnknownError          = IPNAck{RspCode: "99", Message: "Unknown error"}
)

type BuildURLParams struct {
	Amount    int64 // in the currency's base unit; sent to the provider x100
	OrderInfo string
	TxnRef    string
	IPAddr    string
	ReturnURL string
	Locale    string
	BankCode  string
	ExpireAt  time.Time // the booking's expiry; the provider must not accept payment after it
}

type VerifyResult struct {
	IsVerified bool
	IsSuccess  bool
	Message    string

	Amount            int64 // as notified, in the provider's minor unit (base x100)
	TxnRef            string
	TransactionNo     string
	BankCode          string
	BankTranNo        string
	PayDate           string
	ResponseCode      string
	TransactionStatus string
}

type VNPay struct {
	cfg config.VNPayConfig
}

func NewVNPay(cfg config.VNPayConfig) *VNPay {
	return &VNPay{cfg: cfg}
}

func (g *VNPay) BuildPaymentURL(p BuildURLParams) string {
	locale := p.Locale
	if locale == "" {
		locale = "vn"
	}
	returnURL := p.ReturnURL
	if returnURL == "" {
		returnURL = g.cfg.ReturnURL
	}

	params := map[string]string{
		"vnp_Version":    vnpVersion,
		"vnp_Command":    vnpCommand,
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Locale":     locale,
		"vnp_CurrCode":   currCode,
		"vnp_TxnRef":     p.TxnRef,
		"vnp_OrderInfo":  SanitizeOrderInfo(p.OrderInfo),
		"vnp_OrderType":  orderType,
		"vnp_Amount":     strconv.FormatInt(p.Amount*100, 10),
		"vnp_ReturnUrl":  returnURL,
		"vnp_IpAddr":     NormalizeIP(p.IPAddr),
		"vnp_CreateDate": formatDate(time.Now()),
		"vnp_ExpireDate": formatDate(p.ExpireAt),
	}
	if p.BankCode != "" {
		params["vnp_BankCode"] = p.BankCode
	}

	signData := canonicalQuery(params)
	signed := g.sign(signData)

	return g.cfg.Host + "?" + signData + "&" + paramSecureHash + "=" + signed
}

// Verify checks the provider signature over all parameters except the
// signature fields themselves, then interprets the outcome codes. It is
// shared by the return redirect and the IPN path.
func (g *VNPay) Verify(params map[string]string) VerifyResult {
	secureHash := params[paramSecureHash]

	filtered := make(map[string]string, len(params))
	for k, v := range params {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		filtered[k] = v
	}

	signed := g.sign(canonicalQuery(filtered))
	verified := secureHash != "" && hmac.Equal([]byte(signed), []byte(secureHash))

	responseCode := params["vnp_ResponseCode"]
	transactionStatus := params["vnp_TransactionStatus"]

	amount, _ := strconv.ParseInt(params["vnp_Amount"], 10, 64)

	return VerifyResult{
		IsVerified: verified,
		IsSuccess:  verified && responseCode == RespSuccess && transactionStatus == RespSuccess,
		Message:    ResponseMessage(responseCode),

		Amount:            amount,
		TxnRef:            params["vnp_TxnRef"],
		TransactionNo:     params["vnp_TransactionNo"],
		BankCode:          params["vnp_BankCode"],
		BankTranNo:        params["vnp_BankTranNo"],
		PayDate:           params["vnp_PayDate"],
		ResponseCode:      responseCode,
		TransactionStatus: transactionStatus,
	}
}

func (g *VNPay) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// url.QueryEscape percent-encodes these five; the provider's
// canonicalization leaves them raw.
var valueUnescapes = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeValue(v string) string {
	return valueUnescapes.Replace(url.QueryEscape(v))
}

// canonicalQuery sorts keys in ASCII order and joins key=value pairs with
// the values already encoded (spaces render as '+').
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(escapeValue(params[k]))
	}
	return b.String()
}

func formatDate(t time.Time) string {
	return t.Format("20060102150405")
}

// NormalizeIP maps IPv6-mapped IPv4 addresses (::ffff:x.x.x.x) back to
// plain IPv4 and collapses other IPv6 forms to loopback, which is what the
// provider expects in vnp_IpAddr.
func NormalizeIP(ip string) string {
	if strings.HasPrefix(ip, "::ffff:") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	if strings.Contains(ip, ":") {
		return "127.0.0.1"
	}
	return ip
}

var orderInfoPattern = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

func SanitizeOrderInfo(info string) string {
	return strings.TrimSpace(orderInfoPattern.ReplaceAllString(info, ""))
}

// ResponseMessage renders the human-readable meaning of a provider
// response code for the buyer-facing result payload.
func ResponseMessage(code string) string {
	switch code {
	case "00":
		return "Transaction successful"
	case "07":
		return "Deduction successful, transaction suspected of fraud"
	case "09":
		return "Card/Account not registered for Internet Banking"
	case "10":
		return "Incorrect card/account information verification 3+ times"
	case "11":
		return "Payment timeout"
	case "12":
		return "Card/Account is locked"
	case "13":
		return "Wrong OTP"
	case "24":
		return "Transaction cancelled by customer"
	case "51":
		return "Insufficient balance"
	case "65":
		return "Exceeded daily transaction limit"
	case "75":
		return "Bank is under maintenance"
	case "79":
		return "Wrong payment password 3+ times"
	case "99":
		return "Other error"
	default:
		return "Unknown error"
	}
}
