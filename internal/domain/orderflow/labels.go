package orderflow

import (
	"perfumeshop/internal/domain/model"

	"golang.org/x/text/language"
)

// 先頭がデフォルト（ベトナム語）
var supportedLanguages = []language.Tag{
	language.Vietnamese,
	language.English,
}

var matcher = language.NewMatcher(supportedLanguages)

var labels = map[model.OrderStatus][2]string{
	model.OrderStatusPending:         {"Chờ xử lý", "Pending"},
	model.OrderStatusProcessed:       {"Đã xử lý", "Processed"},
	model.OrderStatusShipping:        {"Đang giao hàng", "Shipping"},
	model.OrderStatusDelivered:       {"Đã giao hàng", "Delivered"},
	model.OrderStatusReceived:        {"Đã nhận hàng", "Received"},
	model.OrderStatusCancelled:       {"Đã huỷ đơn hàng", "Cancelled"},
	model.OrderStatusReturnRequested: {"Yêu cầu hoàn hàng", "Return requested"},
	model.OrderStatusReturned:        {"Đã hoàn hàng", "Returned"},
	model.OrderStatusReturnRejected:  {"Từ chối hoàn hàng", "Return rejected"},
}

// Accept-Language ヘッダーから表示言語を決める。解釈できなければベトナム語。
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Vietnamese
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Vietnamese
	}
	return supportedLanguages[idx]
}

func Label(s model.OrderStatus, lang language.Tag) string {
	l, ok := labels[s]
	if !ok {
		return string(s)
	}
	if base, _ := lang.Base(); base.String() == "en" {
		return l[1]
	}
	return l[0]
}
