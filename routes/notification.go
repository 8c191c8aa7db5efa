package routes

import (
	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

func GetMyNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var notifications []models.Notification
	if err := storage.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"notifications": notifications})
}

func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id := ctx.Params().GetUintDefault("id", 0)

	var notification models.Notification
	if err := storage.DB.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Notification not found", ctx)
		return
	}

	if err := storage.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"notification": notification})
}
