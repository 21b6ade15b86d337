package usecase

import "perfumeshop/internal/domain/model"

// リクエストした人（JWTから取り出したもの）
type Viewer struct {
	UserID int64
	Role   model.Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == model.RoleAdmin
}

// 自分の注文か、管理者なら見られる
func (v Viewer) CanSee(o model.Order) bool {
	return v.IsAdmin() || o.UserID == v.UserID
}
