package auction

import "errors"

// 錯誤分類法，呼叫端以 errors.Is 判斷種類來決定是否重試：
//   - ErrValidation / ErrState / ErrAuthorization / ErrNotFound 是確定性錯誤，
//     同樣的輸入重試必然得到同樣的結果，引擎內部不會重試
//   - ErrConflict 代表版本競爭的重試額度耗盡，或同一個冪等鍵帶著不同金額重播
//   - ErrTransient 代表短暫性的失敗，呼叫端可以帶著相同的冪等鍵安全地重試
//   - ErrVersionConflict 與 ErrDuplicateBid 只在引擎與儲存層之間流動，
//     不會原封不動地呈現給外部呼叫端
var (
	ErrValidation      = errors.New("validation error")
	ErrState           = errors.New("state error")
	ErrConflict        = errors.New("conflict error")
	ErrAuthorization   = errors.New("authorization error")
	ErrNotFound        = errors.New("not found")
	ErrTransient       = errors.New("transient error")
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicateBid    = errors.New("duplicate bid")
)
