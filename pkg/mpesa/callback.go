package mpesa

import "strconv"

// CallbackEnvelope mirrors the Daraja STK callback payload.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback is the settlement result for one checkout request.
// ResultCode 0 means the customer paid; anything else is a failure or
// cancellation.
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata carries the name/value items present on success.
type CallbackMetadata struct {
	Item []CallbackMetadataItem `json:"Item"`
}

// CallbackMetadataItem is one metadata entry.
type CallbackMetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// Succeeded reports whether the customer completed payment.
func (c STKCallback) Succeeded() bool {
	return c.ResultCode == 0
}

// ReceiptNumber extracts the MpesaReceiptNumber metadata item, if present.
func (c STKCallback) ReceiptNumber() string {
	return c.metadataString("MpesaReceiptNumber")
}

// PayerPhone extracts the PhoneNumber metadata item, if present.
func (c STKCallback) PayerPhone() string {
	return c.metadataString("PhoneNumber")
}

func (c STKCallback) metadataString(name string) string {
	if c.CallbackMetadata == nil {
		return ""
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name != name {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
