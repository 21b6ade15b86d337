// Package orderflow は注文ステータスの遷移ルールをまとめた純粋なポリシー。
// サーバーの更新処理と、画面で出すボタンの判定（allowed-transitions）の両方がここを呼ぶ。
package orderflow

import (
	"errors"
	"strings"

	"perfumeshop/internal/domain/model"
)

var (
	ErrIllegalTransition = errors.New("illegal order status transition")

	// 取消済みの注文はどの遷移も受け付けない（同じ状態への更新も含む）
	ErrOrderCancelled = errors.New("order is cancelled")
)

// 正常系の一本道。+1だけ進める。
var linearFlow = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusProcessed,
	model.OrderStatusShipping,
	model.OrderStatusDelivered,
	model.OrderStatusReceived,
}

// 全ステータス（表示順）
var allStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusProcessed,
	model.OrderStatusShipping,
	model.OrderStatusDelivered,
	model.OrderStatusReceived,
	model.OrderStatusCancelled,
	model.OrderStatusReturnRequested,
	model.OrderStatusReturned,
	model.OrderStatusReturnRejected,
}

func Statuses() []model.OrderStatus {
	out := make([]model.OrderStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func IsKnown(s model.OrderStatus) bool {
	for _, st := range allStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func linearIndex(s model.OrderStatus) int {
	for i, st := range linearFlow {
		if st == s {
			return i
		}
	}
	return -1
}

type Rule string

const (
	RuleUnknownStatus          Rule = "unknown_status"
	RuleOrderCancelled         Rule = "order_cancelled"
	RuleNotAdjacent            Rule = "not_adjacent"
	RuleCancelNotAllowed       Rule = "cancel_not_allowed"
	RuleMissingReason          Rule = "missing_reason"
	RuleReturnDecisionOnly     Rule = "return_decision_only_from_requested"
	RuleReturnOnlyFromReceived Rule = "return_only_from_received"
	RuleReturnViaRequest       Rule = "return_via_request"
	RuleAdminOnly              Rule = "admin_only"
)

var ruleMessages = map[Rule]string{
	RuleUnknownStatus:          "Trạng thái đơn hàng không hợp lệ",
	RuleOrderCancelled:         "Đơn hàng đã bị huỷ, không thể cập nhật trạng thái",
	RuleNotAdjacent:            "Chỉ được chuyển sang trạng thái kế tiếp, không được quay lại trạng thái trước đó",
	RuleCancelNotAllowed:       "Chỉ được huỷ đơn hàng khi đơn đang ở trạng thái Chờ xử lý hoặc Đã xử lý",
	RuleMissingReason:          "Vui lòng nhập lý do",
	RuleReturnDecisionOnly:     "Chỉ xử lý hoàn hàng khi đơn đang ở trạng thái Yêu cầu hoàn hàng",
	RuleReturnOnlyFromReceived: "Chỉ được yêu cầu hoàn hàng khi đã nhận hàng",
	RuleReturnViaRequest:       "Vui lòng gửi yêu cầu hoàn hàng kèm lý do",
	RuleAdminOnly:              "Chỉ quản trị viên mới được thực hiện thao tác này",
}

// どのルールに引っかかったかを持つエラー。
type TransitionError struct {
	Rule Rule
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *TransitionError) Error() string {
	if msg, ok := ruleMessages[e.Rule]; ok {
		return msg
	}
	return string(e.Rule)
}

func (e *TransitionError) Unwrap() error {
	if e.Rule == RuleOrderCancelled {
		return ErrOrderCancelled
	}
	return ErrIllegalTransition
}

func reject(rule Rule, from, to model.OrderStatus) error {
	return &TransitionError{Rule: rule, From: from, To: to}
}

// 役割を見ない遷移表。
//
//	(a) 同じ状態
//	(b) 一本道の次（+1のみ、戻しは不可）
//	(c) PENDING/PROCESSED -> CANCELLED
//	(d) RETURN_REQUESTED -> RETURNED / RETURN_REJECTED
func IsTransitionAllowed(current, requested model.OrderStatus) bool {
	if !IsKnown(current) || !IsKnown(requested) {
		return false
	}
	if requested == current {
		return true
	}
	if ci, ri := linearIndex(current), linearIndex(requested); ci >= 0 && ri == ci+1 {
		return true
	}
	if requested == model.OrderStatusCancelled {
		return current == model.OrderStatusPending || current == model.OrderStatusProcessed
	}
	if requested == model.OrderStatusReturned || requested == model.OrderStatusReturnRejected {
		return current == model.OrderStatusReturnRequested
	}
	return false
}

type TransitionContext struct {
	Role          model.Role
	PaymentMethod model.PaymentMethod
	Reason        string
}

// 遷移が通ったときに一緒に反映する副作用。空文字は「変更なし」。
type Effects struct {
	PaymentStatus model.PaymentStatus
	CancelReason  string
}

// 役割と理由まで含めた判定。通れば副作用を返す。
func ValidateTransition(current, requested model.OrderStatus, tc TransitionContext) (Effects, error) {
	if err := checkTransition(current, requested, tc.Role); err != nil {
		return Effects{}, err
	}
	if requested == current {
		return Effects{}, nil
	}

	var eff Effects
	switch requested {
	case model.OrderStatusCancelled:
		reason := strings.TrimSpace(tc.Reason)
		if reason == "" {
			return Effects{}, reject(RuleMissingReason, current, requested)
		}
		eff.CancelReason = reason
		if tc.PaymentMethod == model.PaymentMethodOnline {
			eff.PaymentStatus = model.PaymentStatusRefunded
		}
	case model.OrderStatusReceived:
		eff.PaymentStatus = model.PaymentStatusPaid
	case model.OrderStatusReturned:
		if tc.PaymentMethod == model.PaymentMethodOnline {
			eff.PaymentStatus = model.PaymentStatusRefunded
		}
	}
	return eff, nil
}

// 理由の有無を見ない部分。NextTransitions と共有する。
func checkTransition(current, requested model.OrderStatus, role model.Role) error {
	if !IsKnown(current) || !IsKnown(requested) {
		return reject(RuleUnknownStatus, current, requested)
	}
	if current == model.OrderStatusCancelled {
		return reject(RuleOrderCancelled, current, requested)
	}
	if requested == current {
		return nil
	}

	switch requested {
	case model.OrderStatusCancelled:
		if current != model.OrderStatusPending && current != model.OrderStatusProcessed {
			return reject(RuleCancelNotAllowed, current, requested)
		}
		return nil

	case model.OrderStatusReturned, model.OrderStatusReturnRejected:
		if current != model.OrderStatusReturnRequested {
			return reject(RuleReturnDecisionOnly, current, requested)
		}
		if role != model.RoleAdmin {
			return reject(RuleAdminOnly, current, requested)
		}
		return nil

	case model.OrderStatusReturnRequested:
		if current != model.OrderStatusReceived {
			return reject(RuleReturnOnlyFromReceived, current, requested)
		}
		return reject(RuleReturnViaRequest, current, requested)
	}

	ci, ri := linearIndex(current), linearIndex(requested)
	if ci < 0 || ri != ci+1 {
		return reject(RuleNotAdjacent, current, requested)
	}
	// 顧客ができるのは受取確認だけ
	if role != model.RoleAdmin && requested != model.OrderStatusReceived {
		return reject(RuleAdminOnly, current, requested)
	}
	return nil
}

// 画面に出す遷移候補。NeedsReason は取消のように理由入力が要るもの。
type AllowedTransition struct {
	To            model.OrderStatus
	PaymentStatus model.PaymentStatus
	NeedsReason   bool
}

// 今の状態から進める先（同じ状態は含まない）と、そのときの支払ステータスの変化。
func NextTransitions(current model.OrderStatus, role model.Role, paymentMethod model.PaymentMethod) []AllowedTransition {
	out := []AllowedTransition{}
	for _, s := range allStatuses {
		if s == current || checkTransition(current, s, role) != nil {
			continue
		}
		needsReason := s == model.OrderStatusCancelled
		reason := ""
		if needsReason {
			reason = "-"
		}
		eff, err := ValidateTransition(current, s, TransitionContext{Role: role, PaymentMethod: paymentMethod, Reason: reason})
		if err != nil {
			continue
		}
		out = append(out, AllowedTransition{To: s, PaymentStatus: eff.PaymentStatus, NeedsReason: needsReason})
	}
	return out
}

func NextAllowedStatuses(current model.OrderStatus, role model.Role, paymentMethod model.PaymentMethod) []model.OrderStatus {
	ts := NextTransitions(current, role, paymentMethod)
	out := make([]model.OrderStatus, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.To)
	}
	return out
}

// 返品申請（RECEIVED -> RETURN_REQUESTED）。理由必須。
func ValidateReturnRequest(current model.OrderStatus, reason string) error {
	if current == model.OrderStatusCancelled {
		return reject(RuleOrderCancelled, current, model.OrderStatusReturnRequested)
	}
	if current != model.OrderStatusReceived {
		return reject(RuleReturnOnlyFromReceived, current, model.OrderStatusReturnRequested)
	}
	if strings.TrimSpace(reason) == "" {
		return reject(RuleMissingReason, current, model.OrderStatusReturnRequested)
	}
	return nil
}

// 受取確認・返品結果が出た注文だけレビューできる。
func CanReview(current model.OrderStatus) bool {
	return current == model.OrderStatusReceived || current == model.OrderStatusReturnRejected
}
