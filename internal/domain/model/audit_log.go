package model

import "time"

type AuditAction string

const (
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionRequestReturn     AuditAction = "REQUEST_RETURN"
	AuditActionDeleteOrder       AuditAction = "DELETE_ORDER"

	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionSoftDelete AuditAction = "SOFT_DELETE"
	AuditActionRestore    AuditAction = "RESTORE"
	AuditActionHardDelete AuditAction = "HARD_DELETE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder          AuditResourceType = "order"
	AuditResourceBrand          AuditResourceType = "brand"
	AuditResourceCategory       AuditResourceType = "category"
	AuditResourceProduct        AuditResourceType = "product"
	AuditResourceProductVariant AuditResourceType = "product_variant"
	AuditResourceAttribute      AuditResourceType = "attribute"
	AuditResourceAttributeValue AuditResourceType = "attribute_value"
	AuditResourceVoucher        AuditResourceType = "voucher"
	AuditResourceFaq            AuditResourceType = "faq"
)

// ゴミ箱まわりの操作
func TrashActions() []AuditAction {
	return []AuditAction{AuditActionSoftDelete, AuditActionRestore, AuditActionHardDelete}
}

// 注文以外の、カタログ管理画面で扱う対象
func CatalogResourceTypes() []AuditResourceType {
	return []AuditResourceType{
		AuditResourceBrand,
		AuditResourceCategory,
		AuditResourceProduct,
		AuditResourceProductVariant,
		AuditResourceAttribute,
		AuditResourceAttributeValue,
		AuditResourceVoucher,
		AuditResourceFaq,
	}
}

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。顧客の返品申請なども残す。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
