package auction

import (
	"github.com/samber/lo"

	"gavel/models"
)

// transitionTable 是狀態轉移合法性的唯一來源，狀態只能沿著表上的邊移動
// 終態（ended / cancelled / settled）沒有任何出邊；settled 由外部的結算流程寫入
var transitionTable = map[models.Status][]models.Status{
	models.StatusScheduled: {models.StatusActive, models.StatusCancelled},
	models.StatusActive:    {models.StatusPaused, models.StatusEnded, models.StatusCancelled},
	models.StatusPaused:    {models.StatusActive, models.StatusCancelled},
}

// CanTransition 判斷 from 到 to 的轉移是否在轉移表上
func CanTransition(from, to models.Status) bool {
	return lo.Contains(transitionTable[from], to)
}
