package services

import (
	"fmt"

	"boarding-marketplace-server/models"
	"boarding-marketplace-server/storage"

	"go.uber.org/zap"
)

// NotificationService writes in-app notification rows for domain events.
// Delivery channels (email, push) are out of scope; readers poll their feed.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (s *NotificationService) notify(userID uint, notifType, title, message, refType string, refID uint) {
	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		RefType: refType,
		RefID:   refID,
	}
	if err := storage.DB.Create(&notification).Error; err != nil {
		zap.S().Errorw("failed to create notification", "type", notifType, "userID", userID, "error", err)
	}
}

func (s *NotificationService) ReservationRequested(ownerID uint, boardingTitle string, reservationID uint) {
	s.notify(ownerID, "reservation_requested", "New reservation request",
		fmt.Sprintf("A student requested to reserve '%s'.", boardingTitle),
		"reservation", reservationID)
}

func (s *NotificationService) ReservationApproved(studentID uint, boardingTitle string, reservationID uint) {
	s.notify(studentID, "reservation_approved", "Reservation approved",
		fmt.Sprintf("Your reservation for '%s' was approved.", boardingTitle),
		"reservation", reservationID)
}

func (s *NotificationService) ReservationRejected(studentID uint, boardingTitle, reason string, reservationID uint) {
	s.notify(studentID, "reservation_rejected", "Reservation rejected",
		fmt.Sprintf("Your reservation for '%s' was rejected: %s", boardingTitle, reason),
		"reservation", reservationID)
}

func (s *NotificationService) PaymentLogged(ownerID uint, amount string, paymentID uint) {
	s.notify(ownerID, "payment_logged", "Payment awaiting confirmation",
		fmt.Sprintf("A tenant logged a payment of %s.", amount),
		"payment", paymentID)
}

func (s *NotificationService) PaymentConfirmed(studentID uint, amount string, paymentID uint) {
	s.notify(studentID, "payment_confirmed", "Payment confirmed",
		fmt.Sprintf("Your payment of %s was confirmed.", amount),
		"payment", paymentID)
}

func (s *NotificationService) PaymentRejected(studentID uint, amount, reason string, paymentID uint) {
	s.notify(studentID, "payment_rejected", "Payment rejected",
		fmt.Sprintf("Your payment of %s was rejected: %s", amount, reason),
		"payment", paymentID)
}

func (s *NotificationService) VisitRequested(ownerID uint, boardingTitle string, visitID uint) {
	s.notify(ownerID, "visit_requested", "New visit request",
		fmt.Sprintf("A student requested a visit to '%s'.", boardingTitle),
		"visit_request", visitID)
}

func (s *NotificationService) VisitDecision(studentID uint, boardingTitle, decision string, visitID uint) {
	s.notify(studentID, "visit_"+decision, "Visit request "+decision,
		fmt.Sprintf("Your visit request for '%s' was %s.", boardingTitle, decision),
		"visit_request", visitID)
}
