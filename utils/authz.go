package utils

import (
	"boarding-marketplace-server/models"
)

// Access to reservations, their rental periods and visit requests is decided
// in one place: the student on the record, the owner of its boarding, and
// admins may read; everyone else is refused.

func CanAccessReservation(role string, userID uint, reservation *models.Reservation, boardingOwnerID uint) bool {
	if role == models.RoleAdmin {
		return true
	}
	return reservation.StudentID == userID || boardingOwnerID == userID
}

func CanAccessVisitRequest(role string, userID uint, visit *models.VisitRequest, boardingOwnerID uint) bool {
	if role == models.RoleAdmin {
		return true
	}
	return visit.StudentID == userID || boardingOwnerID == userID
}
