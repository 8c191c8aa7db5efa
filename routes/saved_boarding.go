package routes

import (
	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

func SaveBoarding(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)
	boardingID := ctx.Params().GetUintDefault("id", 0)

	var boarding models.Boarding
	if err := storage.DB.Where("id = ? AND is_deleted = ?", boardingID, false).First(&boarding).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Boarding not found", ctx)
		return
	}

	var count int64
	if err := storage.DB.Model(&models.SavedBoarding{}).
		Where("student_id = ? AND boarding_id = ?", studentID, boardingID).
		Count(&count).Error; err != nil {
		respondError(err, ctx)
		return
	}
	if count > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "Boarding already saved", ctx)
		return
	}

	saved := models.SavedBoarding{StudentID: studentID, BoardingID: boardingID}
	if err := storage.DB.Create(&saved).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"saved": saved})
}

func UnsaveBoarding(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)
	boardingID := ctx.Params().GetUintDefault("id", 0)

	result := storage.DB.Where("student_id = ? AND boarding_id = ?", studentID, boardingID).
		Delete(&models.SavedBoarding{})
	if result.Error != nil {
		respondError(result.Error, ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Saved boarding not found", ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Boarding removed from saved list"})
}

func GetSavedBoardings(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var saved []models.SavedBoarding
	if err := storage.DB.Where("student_id = ?", studentID).
		Preload("Boarding").
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"savedBoardings": saved})
}
