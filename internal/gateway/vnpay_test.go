package gateway

import (
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhoang/cinema-booking/config"
)

func newTestGateway() *VNPay {
	return NewVNPay(config.VNPayConfig{
		TmnCode:    "TESTCODE",
		HashSecret: "test-hash-secret",
		Host:       "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://app.example.com/payment/return",
	})
}

func buildParams() BuildURLParams {
	return BuildURLParams{
		Amount:    230000,
		OrderInfo: "Thanh toan ve xem phim BKTEST123456",
		TxnRef:    "BKTEST123456",
		IPAddr:    "203.0.113.9",
		ExpireAt:  time.Now().Add(10 * time.Minute),
	}
}

func parseQuery(t *testing.T, rawURL string) map[string]string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	values, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)

	params := make(map[string]string, len(values))
	for k, v := range values {
		params[k] = v[0]
	}
	return params
}

func TestBuildPaymentURL_Fields(t *testing.T) {
	g := newTestGateway()

	rawURL := g.BuildPaymentURL(buildParams())
	params := parseQuery(t, rawURL)

	assert.Equal(t, "2.1.0", params["vnp_Version"])
	assert.Equal(t, "pay", params["vnp_Command"])
	assert.Equal(t, "TESTCODE", params["vnp_TmnCode"])
	assert.Equal(t, "VND", params["vnp_CurrCode"])
	assert.Equal(t, "vn", params["vnp_Locale"])
	assert.Equal(t, "BKTEST123456", params["vnp_TxnRef"])
	assert.Equal(t, "23000000", params["vnp_Amount"]) // base unit x100
	assert.Equal(t, "203.0.113.9", params["vnp_IpAddr"])
	assert.Equal(t, "https://app.example.com/payment/return", params["vnp_ReturnUrl"])
	assert.NotEmpty(t, params["vnp_SecureHash"])

	assert.Regexp(t, regexp.MustCompile(`^\d{14}$`), params["vnp_CreateDate"])
	assert.Regexp(t, regexp.MustCompile(`^\d{14}$`), params["vnp_ExpireDate"])
}

func TestBuildPaymentURL_SortedQuery(t *testing.T) {
	g := newTestGateway()

	rawURL := g.BuildPaymentURL(buildParams())
	query := rawURL[strings.Index(rawURL, "?")+1:]

	var keys []string
	for _, pair := range strings.Split(query, "&") {
		keys = append(keys, pair[:strings.Index(pair, "=")])
	}
	// every key except the trailing signature must be in ascending order
	for i := 1; i < len(keys)-1; i++ {
		assert.LessOrEqual(t, keys[i-1], keys[i])
	}
	assert.Equal(t, "vnp_SecureHash", keys[len(keys)-1])
}

func TestBuildPaymentURL_OptionalBankCode(t *testing.T) {
	g := newTestGateway()

	p := buildParams()
	params := parseQuery(t, g.BuildPaymentURL(p))
	_, present := params["vnp_BankCode"]
	assert.False(t, present)

	p.BankCode = "NCB"
	params = parseQuery(t, g.BuildPaymentURL(p))
	assert.Equal(t, "NCB", params["vnp_BankCode"])
}

func TestBuildPaymentURL_ValueEncoding(t *testing.T) {
	g := newTestGateway()

	p := buildParams()
	p.ReturnURL = "https://app.example.com/return?tag=a!b*c'd(e)f&x=1"
	rawURL := g.BuildPaymentURL(p)

	// sub-delims stay raw in the signed string; everything else is escaped
	assert.Contains(t, rawURL, "a!b*c'd(e)f")
	assert.Contains(t, rawURL, "https%3A%2F%2Fapp.example.com%2Freturn")

	result := g.Verify(parseQuery(t, rawURL))
	assert.True(t, result.IsVerified)
}

func TestVerify_RoundTrip(t *testing.T) {
	g := newTestGateway()

	params := parseQuery(t, g.BuildPaymentURL(buildParams()))

	result := g.Verify(params)
	assert.True(t, result.IsVerified)
	assert.Equal(t, "BKTEST123456", result.TxnRef)
	assert.Equal(t, int64(23000000), result.Amount) // minor units, as notified
}

func TestVerify_TamperedParameter(t *testing.T) {
	g := newTestGateway()

	params := parseQuery(t, g.BuildPaymentURL(buildParams()))
	params["vnp_Amount"] = "1"

	result := g.Verify(params)
	assert.False(t, result.IsVerified)
	assert.False(t, result.IsSuccess)
}

func TestVerify_MissingSignature(t *testing.T) {
	g := newTestGateway()

	params := parseQuery(t, g.BuildPaymentURL(buildParams()))
	delete(params, "vnp_SecureHash")

	result := g.Verify(params)
	assert.False(t, result.IsVerified)
}

func TestVerify_IgnoresSecureHashType(t *testing.T) {
	g := newTestGateway()

	params := parseQuery(t, g.BuildPaymentURL(buildParams()))
	params["vnp_SecureHashType"] = "HMACSHA512"

	result := g.Verify(params)
	assert.True(t, result.IsVerified)
}

func TestVerify_SuccessNeedsBothCodes(t *testing.T) {
	g := newTestGateway()

	base := parseQuery(t, g.BuildPaymentURL(buildParams()))
	delete(base, "vnp_SecureHash")

	sign := func(extra map[string]string) map[string]string {
		params := make(map[string]string, len(base)+len(extra))
		for k, v := range base {
			params[k] = v
		}
		for k, v := range extra {
			params[k] = v
		}
		params[paramSecureHash] = g.sign(canonicalQuery(params))
		return params
	}

	result := g.Verify(sign(map[string]string{
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
	}))
	assert.True(t, result.IsSuccess)

	result = g.Verify(sign(map[string]string{
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "02",
	}))
	assert.False(t, result.IsSuccess)

	result = g.Verify(sign(map[string]string{
		"vnp_ResponseCode":      "24",
		"vnp_TransactionStatus": "00",
	}))
	assert.False(t, result.IsSuccess)
}

func TestNormalizeIP(t *testing.T) {
	assert.Equal(t, "127.0.0.1", NormalizeIP("::ffff:127.0.0.1"))
	assert.Equal(t, "203.0.113.9", NormalizeIP("203.0.113.9"))
	assert.Equal(t, "2001:db8::1", NormalizeIP("2001:db8::1"))
}

func TestSanitizeOrderInfo(t *testing.T) {
	assert.Equal(t, "Thanh toan ve BK123", SanitizeOrderInfo("Thanh toan ve BK-123!"))
	assert.Equal(t, "abc 123", SanitizeOrderInfo("  abc 123  "))
}

func TestResponseMessage(t *testing.T) {
	assert.Equal(t, "Transaction successful", ResponseMessage("00"))
	assert.NotEmpty(t, ResponseMessage("24"))
	assert.Equal(t, "Other error", ResponseMessage("99"))
	assert.Equal(t, "Unknown error", ResponseMessage("nonsense"))
}
