package routes

import (
	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"
	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateReviewInput struct {
	ReservationID uint   `json:"reservationID" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=2000"`
}

// CreateReview lets the student of a COMPLETED reservation leave one review.
func CreateReview(ctx iris.Context) {
	studentID := ctx.Values().Get("userID").(uint)

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	if err := storage.DB.First(&reservation, input.ReservationID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	if reservation.StudentID != studentID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This is not your reservation", ctx)
		return
	}
	if reservation.Status != models.ReservationCompleted {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Reviews can only be written for COMPLETED reservations", ctx)
		return
	}

	var count int64
	if err := storage.DB.Model(&models.Review{}).
		Where("reservation_id = ?", input.ReservationID).
		Count(&count).Error; err != nil {
		respondError(err, ctx)
		return
	}
	if count > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "A review already exists for this reservation", ctx)
		return
	}

	review := models.Review{
		ReservationID: input.ReservationID,
		StudentID:     studentID,
		BoardingID:    reservation.BoardingID,
		Rating:        input.Rating,
		Comment:       input.Comment,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"review": review})
}

// GetBoardingReviews lists a boarding's reviews, newest first. Public.
func GetBoardingReviews(ctx iris.Context) {
	boardingID := ctx.Params().GetUintDefault("id", 0)

	var reviews []models.Review
	if err := storage.DB.Where("boarding_id = ?", boardingID).
		Preload("Student").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		respondError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{"reviews": reviews})
}
